// Package keymanager implements a versioned key store for an OPRF
// deployment (spec component 9): key rotation, retirement, metadata
// export, and concurrency-safe lookup by version.
package keymanager

import (
	"sort"
	"sync"

	"github.com/pion/logging"

	"github.com/wurp/go-oprf/keypair"
	"github.com/wurp/go-oprf/oprf"
	"github.com/wurp/go-oprf/oprferr"
)

// Config configures a KeyManager. LoggerFactory is optional; if nil,
// lifecycle events are not logged.
type Config struct {
	LoggerFactory logging.LoggerFactory
}

// Metadata describes one key version without exposing its secret.
type Metadata struct {
	Version   uint32
	PublicKey []byte
	IsCurrent bool
}

// KeyManager holds every live key generation for a fixed OPRF mode and
// tracks which version is current. Reads (Get, Current, Metadata,
// ExportAll) may run concurrently with each other; rotation and
// retirement serialize against all readers and each other.
type KeyManager struct {
	mu      sync.RWMutex
	mode    oprf.Mode
	keys    map[uint32]*keypair.KeyPair
	current uint32
	log     logging.LeveledLogger
}

func newManager(mode oprf.Mode, cfg Config) *KeyManager {
	km := &KeyManager{
		mode: mode,
		keys: make(map[uint32]*keypair.KeyPair),
	}
	if cfg.LoggerFactory != nil {
		km.log = cfg.LoggerFactory.NewLogger("keymanager")
	}
	return km
}

// New creates a KeyManager with a single, randomly generated version 1
// key for the given mode.
func New(mode oprf.Mode, cfg Config) (*KeyManager, error) {
	kp, err := keypair.Random()
	if err != nil {
		return nil, err
	}
	km := newManager(mode, cfg)
	km.keys[1] = kp
	km.current = 1
	km.logf("initialized version 1")
	return km, nil
}

// NewWithSecretKey creates a KeyManager whose single version 1 key is
// derived from a caller-supplied secret scalar.
func NewWithSecretKey(mode oprf.Mode, sk []byte, cfg Config) (*KeyManager, error) {
	kp, err := keypair.FromSecretKey(sk)
	if err != nil {
		return nil, err
	}
	km := newManager(mode, cfg)
	km.keys[1] = kp
	km.current = 1
	km.logf("initialized version 1 from a supplied secret key")
	return km, nil
}

// Restore rebuilds a KeyManager from a previously exported set of
// versioned secret keys and the version that was current, for use when
// loading persisted state at startup.
func Restore(mode oprf.Mode, versionedKeys map[uint32][]byte, currentVersion uint32, cfg Config) (*KeyManager, error) {
	if len(versionedKeys) == 0 {
		return nil, oprferr.New(oprferr.SizeLimit, "cannot restore a key manager with no versions")
	}
	km := newManager(mode, cfg)
	for version, sk := range versionedKeys {
		kp, err := keypair.FromSecretKey(sk)
		if err != nil {
			return nil, err
		}
		km.keys[version] = kp
	}
	if _, ok := km.keys[currentVersion]; !ok {
		return nil, oprferr.New(oprferr.UnknownKeyVersion, "current version is not among the restored versions")
	}
	km.current = currentVersion
	km.logf("restored %d versions, current=%d", len(versionedKeys), currentVersion)
	return km, nil
}

func (km *KeyManager) nextVersionLocked() uint32 {
	candidate := km.current + 1
	for {
		if _, taken := km.keys[candidate]; !taken {
			return candidate
		}
		candidate++
	}
}

// RotateRandom installs a new, randomly generated key as the current
// version and returns its version number. The new version is the
// smallest unused version greater than the current one.
func (km *KeyManager) RotateRandom() (uint32, error) {
	kp, err := keypair.Random()
	if err != nil {
		return 0, err
	}
	return km.rotateTo(kp)
}

// RotateDeterministic installs a new key derived from seed and info via
// RFC 9497's DeriveKeyPair as the current version.
func (km *KeyManager) RotateDeterministic(seed, info []byte) (uint32, error) {
	km.mu.RLock()
	mode := km.mode
	km.mu.RUnlock()

	kp, err := keypair.DeriveKeyPair(byte(mode), seed, info)
	if err != nil {
		return 0, err
	}
	return km.rotateTo(kp)
}

// RotateToSecretKey installs a caller-supplied secret key as the
// current version.
func (km *KeyManager) RotateToSecretKey(sk []byte) (uint32, error) {
	kp, err := keypair.FromSecretKey(sk)
	if err != nil {
		return 0, err
	}
	return km.rotateTo(kp)
}

func (km *KeyManager) rotateTo(kp *keypair.KeyPair) (uint32, error) {
	km.mu.Lock()
	defer km.mu.Unlock()

	version := km.nextVersionLocked()
	km.keys[version] = kp
	km.current = version
	km.logf("rotated to version %d", version)
	return version, nil
}

// Get returns the server for a specific key version.
func (km *KeyManager) Get(version uint32) (*oprf.Server, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	kp, ok := km.keys[version]
	if !ok {
		return nil, oprferr.New(oprferr.UnknownKeyVersion, "no key at the requested version")
	}
	return oprf.NewServer(km.mode, kp), nil
}

// Current returns the server for the current key version and that
// version's number.
func (km *KeyManager) Current() (*oprf.Server, uint32) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	return oprf.NewServer(km.mode, km.keys[km.current]), km.current
}

// Retire removes a non-current key version. Retiring the current
// version is rejected; rotate away from it first.
func (km *KeyManager) Retire(version uint32) error {
	km.mu.Lock()
	defer km.mu.Unlock()

	if version == km.current {
		return oprferr.New(oprferr.ModeMisuse, "cannot retire the current key version")
	}
	if _, ok := km.keys[version]; !ok {
		return oprferr.New(oprferr.UnknownKeyVersion, "no key at the requested version")
	}
	delete(km.keys, version)
	km.logf("retired version %d", version)
	return nil
}

// Metadata returns every live version's public key and current flag,
// ordered by version ascending.
func (km *KeyManager) Metadata() []Metadata {
	km.mu.RLock()
	defer km.mu.RUnlock()

	out := make([]Metadata, 0, len(km.keys))
	for version, kp := range km.keys {
		out = append(out, Metadata{
			Version:   version,
			PublicKey: kp.PublicKeyBytes(),
			IsCurrent: version == km.current,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// ExportPrivate returns a defensive copy of one version's secret key.
func (km *KeyManager) ExportPrivate(version uint32) ([]byte, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	kp, ok := km.keys[version]
	if !ok {
		return nil, oprferr.New(oprferr.UnknownKeyVersion, "no key at the requested version")
	}
	return kp.PrivateKeyBytes(), nil
}

// ExportAll returns defensive copies of every live version's secret
// key, keyed by version, for persistence between process restarts.
func (km *KeyManager) ExportAll() map[uint32][]byte {
	km.mu.RLock()
	defer km.mu.RUnlock()

	out := make(map[uint32][]byte, len(km.keys))
	for version, kp := range km.keys {
		out[version] = kp.PrivateKeyBytes()
	}
	return out
}

// CurrentVersion returns the version number currently in use.
func (km *KeyManager) CurrentVersion() uint32 {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.current
}

func (km *KeyManager) logf(format string, args ...interface{}) {
	if km.log == nil {
		return
	}
	km.log.Infof(format, args...)
}
