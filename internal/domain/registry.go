package domain

import (
	"fmt"
	"sort"
	"sync"
)

// KeyRegistry is the set of national ids enrolled for Pix transfers. It only
// tracks membership; ids resolve to accounts through the owner id, which is
// unique across the directory.
type KeyRegistry struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

func NewKeyRegistry(keys ...string) *KeyRegistry {
	r := &KeyRegistry{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		r.keys[k] = struct{}{}
	}
	return r
}

func (r *KeyRegistry) Register(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keys[key]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, key)
	}
	r.keys[key] = struct{}{}
	return nil
}

func (r *KeyRegistry) IsRegistered(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.keys[key]
	return exists
}

func (r *KeyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// Keys returns the registered keys in ascending order.
func (r *KeyRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.keys))
	for k := range r.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
