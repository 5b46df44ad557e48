package internal

import (
	"fmt"
	"reflect"
)

// hashMapRegistry keys handler functions by name. Registration happens at
// engine init or from workflow code (SetQueryHandler, SetSignalHandler);
// lookups are hot-path during activation dispatch.
type hashMapRegistry struct {
	entries map[string]any
}

func newHandlerRegistry() *hashMapRegistry {
	return &hashMapRegistry{entries: make(map[string]any)}
}

func (m *hashMapRegistry) get(k string) (any, error) {
	entry, ok := m.entries[k]
	if !ok {
		return nil, fmt.Errorf("no handler registered for %q", k)
	}
	return entry, nil
}

func (m *hashMapRegistry) set(k string, v any) error {
	if _, ok := m.entries[k]; ok {
		return fmt.Errorf("handler %q already registered", k)
	}
	if reflect.TypeOf(v).Kind() != reflect.Func {
		return fmt.Errorf("handler %q is not a function", k)
	}
	m.entries[k] = v
	return nil
}

func (m *hashMapRegistry) size() int64 {
	return int64(len(m.entries))
}
