// Package registry provides a concurrent, case-insensitive class registry.
package registry

import (
	"strings"
	"sync"

	phpserial "github.com/wippyai/php-serial"
	"github.com/wippyai/php-serial/errors"
	"github.com/wippyai/php-serial/value"
)

// Map resolves class names case-insensitively. The zero value is not usable;
// call New.
type Map struct {
	classes map[string]entry
	mu      sync.RWMutex
}

type entry struct {
	ctor phpserial.Constructor
	name string
}

var _ phpserial.ClassRegistry = (*Map)(nil)

func New() *Map {
	return &Map{
		classes: make(map[string]entry),
	}
}

// Register binds name to ctor. A nil ctor registers a plain object
// constructor that uses the canonical spelling of name.
func (m *Map) Register(name string, ctor phpserial.Constructor) error {
	if name == "" {
		return errors.Registration(name, errors.InvalidInput(errors.PhaseRegistry, "class name cannot be empty"))
	}
	if strings.ContainsRune(name, 0) {
		return errors.Registration(name, errors.InvalidInput(errors.PhaseRegistry, "class name contains NUL"))
	}
	if ctor == nil {
		canonical := name
		ctor = func(string) *value.Object {
			return value.NewObject(canonical)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.classes[strings.ToLower(name)] = entry{name: name, ctor: ctor}
	return nil
}

// MustRegister is Register that panics on error.
func (m *Map) MustRegister(name string, ctor phpserial.Constructor) {
	if err := m.Register(name, ctor); err != nil {
		panic(err)
	}
}

func (m *Map) Unregister(name string) bool {
	key := strings.ToLower(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.classes[key]; !ok {
		return false
	}
	delete(m.classes, key)
	return true
}

// Resolve returns the constructor registered under name in any letter case.
func (m *Map) Resolve(name string) (phpserial.Constructor, bool) {
	m.mu.RLock()
	e, ok := m.classes[strings.ToLower(name)]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.ctor, true
}

// Canonical returns the spelling name was registered with.
func (m *Map) Canonical(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.classes[strings.ToLower(name)]
	return e.name, ok
}

func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.classes)
}

// Names returns the registered class names in canonical spelling.
func (m *Map) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.classes))
	for _, e := range m.classes {
		names = append(names, e.name)
	}
	return names
}
