package registry

import (
	"fmt"
	"reflect"
	"sync"
)

// TypeRegistry maps declared payload type names to runtime types, so
// configuration-driven setup can resolve the types named in a link
// declaration and diagnostics can print stable names.
type TypeRegistry interface {
	// Register registers a payload type under a type name
	Register(typeName string, prototype any) error

	// RegisterType registers a payload type using its struct name
	RegisterType(prototype any) error

	// Get retrieves the type for a given type name
	Get(typeName string) (reflect.Type, error)

	// CreateInstance creates a new pointer instance of the registered type
	CreateInstance(typeName string) (any, error)

	// GetTypeName gets the registered type name for a value
	GetTypeName(v any) (string, error)

	// IsRegistered checks if a type name is registered
	IsRegistered(typeName string) bool

	// ListTypes returns all registered type names
	ListTypes() []string
}

// DefaultTypeRegistry is the default implementation of TypeRegistry
type DefaultTypeRegistry struct {
	types map[string]reflect.Type
	names map[reflect.Type]string
	mu    sync.RWMutex
}

// NewTypeRegistry creates a new type registry
func NewTypeRegistry() *DefaultTypeRegistry {
	return &DefaultTypeRegistry{
		types: make(map[string]reflect.Type),
		names: make(map[reflect.Type]string),
	}
}

// Register registers a payload type under a type name
func (r *DefaultTypeRegistry) Register(typeName string, prototype any) error {
	if typeName == "" {
		return fmt.Errorf("type name cannot be empty")
	}

	if prototype == nil {
		return fmt.Errorf("payload type cannot be nil")
	}

	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return fmt.Errorf("payload type must be a struct, got %v", t.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate registration
	if existing, exists := r.types[typeName]; exists {
		if existing == t {
			// Same type, ignore
			return nil
		}
		return fmt.Errorf("type name %s already registered to %v", typeName, existing)
	}

	r.types[typeName] = t
	r.names[t] = typeName

	return nil
}

// RegisterType registers a payload type using its struct name
func (r *DefaultTypeRegistry) RegisterType(prototype any) error {
	if prototype == nil {
		return fmt.Errorf("payload type cannot be nil")
	}

	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	typeName := t.Name()
	if typeName == "" {
		return fmt.Errorf("cannot determine type name for %v", t)
	}

	return r.Register(typeName, prototype)
}

// Get retrieves the type for a given type name
func (r *DefaultTypeRegistry) Get(typeName string) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.types[typeName]
	if !exists {
		return nil, fmt.Errorf("type %s not registered", typeName)
	}

	return t, nil
}

// CreateInstance creates a new pointer instance of the registered type
func (r *DefaultTypeRegistry) CreateInstance(typeName string) (any, error) {
	t, err := r.Get(typeName)
	if err != nil {
		return nil, err
	}

	return reflect.New(t).Interface(), nil
}

// GetTypeName gets the registered type name for a value
func (r *DefaultTypeRegistry) GetTypeName(v any) (string, error) {
	if v == nil {
		return "", fmt.Errorf("value cannot be nil")
	}

	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	name, exists := r.names[t]
	if !exists {
		return "", fmt.Errorf("type %v not registered", t)
	}

	return name, nil
}

// IsRegistered checks if a type name is registered
func (r *DefaultTypeRegistry) IsRegistered(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.types[typeName]
	return exists
}

// ListTypes returns all registered type names
func (r *DefaultTypeRegistry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.types))
	for typeName := range r.types {
		types = append(types, typeName)
	}

	return types
}
