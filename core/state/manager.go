package state

import (
	"bytes"
	"fmt"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"tokenvest/storage"
)

// Manager provides typed access to ledger state over a raw key-value store.
// Logical keys are hashed before hitting the backend and record payloads are
// RLP encoded, so the same manager works against the in-memory and LevelDB
// databases alike.
type Manager struct {
	mu sync.RWMutex
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var (
	rolePrefix  = []byte("role/")
	pausePrefix = []byte("pause/")
)

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func roleKey(role string, addr []byte) []byte {
	buf := make([]byte, 0, len(rolePrefix)+len(role)+1+len(addr))
	buf = append(buf, rolePrefix...)
	buf = append(buf, role...)
	buf = append(buf, ':')
	buf = append(buf, addr...)
	return ethcrypto.Keccak256(buf)
}

func pauseKey(module string) []byte {
	buf := make([]byte, 0, len(pausePrefix)+len(module))
	buf = append(buf, pausePrefix...)
	buf = append(buf, module...)
	return ethcrypto.Keccak256(buf)
}

// KVPut stores the RLP encoding of value under the hashed key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %x: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.Put(kvKey(key), encoded)
}

// KVGet decodes the stored value into out and reports whether the key exists.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	m.mu.RLock()
	data, err := m.db.Get(kvKey(key))
	m.mu.RUnlock()
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %x: %w", key, err)
	}
	return true, nil
}

// KVDelete removes the record stored under the hashed key. Deleting a missing
// key is a no-op.
func (m *Manager) KVDelete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.Delete(kvKey(key))
}

// KVAppend appends value to the RLP-encoded list stored under key, creating
// the list if absent. Duplicate entries are rejected so append-only indexes
// stay free of repeats.
func (m *Manager) KVAppend(key []byte, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	hashed := kvKey(key)
	data, err := m.db.Get(hashed)
	if err != nil {
		return err
	}
	var list [][]byte
	if len(data) > 0 {
		if err := rlp.DecodeBytes(data, &list); err != nil {
			return fmt.Errorf("state: decode list %x: %w", key, err)
		}
	}
	for _, existing := range list {
		if bytes.Equal(existing, value) {
			return fmt.Errorf("state: duplicate list entry under %x", key)
		}
	}
	list = append(list, append([]byte(nil), value...))
	encoded, err := rlp.EncodeToBytes(list)
	if err != nil {
		return err
	}
	return m.db.Put(hashed, encoded)
}

// KVGetList decodes the list stored under key into out. A missing key yields
// an empty list.
func (m *Manager) KVGetList(key []byte, out interface{}) error {
	m.mu.RLock()
	data, err := m.db.Get(kvKey(key))
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return fmt.Errorf("state: decode list %x: %w", key, err)
	}
	return nil
}

// GrantRole records that the address holds the named role.
func (m *Manager) GrantRole(role string, addr []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.Put(roleKey(role, addr), []byte{1})
}

// RevokeRole removes the role assignment for the address.
func (m *Manager) RevokeRole(role string, addr []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.Delete(roleKey(role, addr))
}

// HasRole reports whether the address holds the named role. Lookup failures
// read as "no role" so authorization stays fail-closed.
func (m *Manager) HasRole(role string, addr []byte) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, err := m.db.Get(roleKey(role, addr))
	if err != nil {
		return false
	}
	return len(data) > 0 && data[0] == 1
}

// SetPaused toggles the administrative pause flag for a native module.
func (m *Manager) SetPaused(module string, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if paused {
		return m.db.Put(pauseKey(module), []byte{1})
	}
	return m.db.Delete(pauseKey(module))
}

// IsPaused implements the native/common.PauseView interface.
func (m *Manager) IsPaused(module string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, err := m.db.Get(pauseKey(module))
	if err != nil {
		return false
	}
	return len(data) > 0 && data[0] == 1
}
