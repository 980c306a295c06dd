package revisionable

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Nameable is implemented by models that can label themselves in revision history.
type Nameable interface {
	IdentifiableName() string
}

// MutatorFunc transforms a stored value before it is formatted.
type MutatorFunc func(value string) string

// Mutable is implemented by models that declare per-field value mutators.
type Mutable interface {
	RevisionMutators() map[string]MutatorFunc
}

// Kind describes a revisionable model and how its revisions are displayed.
type Kind struct {
	Name  string
	Model any

	NullString    string
	UnknownString string

	FormattedFields   map[string]string
	FieldNames        map[string]string
	PolymorphicFields []string

	modelType reflect.Type
}

// New returns a pointer to a zero value of the kind's model.
func (k *Kind) New() any {
	t := k.modelType
	if t == nil {
		t = structType(reflect.TypeOf(k.Model))
	}
	if t == nil {
		return nil
	}
	return reflect.New(t).Interface()
}

func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

func (k *Kind) IsPolymorphic(key string) bool {
	for _, f := range k.PolymorphicFields {
		if f == key {
			return true
		}
	}
	return false
}

func (k *Kind) mutator(key string) (MutatorFunc, bool) {
	return mutatorFor(k.New(), key)
}

func mutatorFor(instance any, key string) (MutatorFunc, bool) {
	m, ok := instance.(Mutable)
	if !ok {
		return nil, false
	}
	fn, ok := m.RevisionMutators()[key]
	return fn, ok && fn != nil
}

// Registry is the alias table mapping type names to kinds.
type Registry struct {
	mu      sync.RWMutex
	kinds   map[string]*Kind
	aliases map[string]string
	byType  map[reflect.Type]*Kind
}

func NewRegistry() *Registry {
	return &Registry{
		kinds:   make(map[string]*Kind),
		aliases: make(map[string]string),
		byType:  make(map[reflect.Type]*Kind),
	}
}

// Register adds a kind. Name, Model and both placeholders are required.
func (r *Registry) Register(k Kind) error {
	if k.Name == "" {
		return fmt.Errorf("revisionable: kind name is required")
	}
	if k.Model == nil {
		return fmt.Errorf("revisionable: kind %s has no model", k.Name)
	}
	if k.NullString == "" || k.UnknownString == "" {
		return fmt.Errorf("revisionable: kind %s needs null and unknown placeholders", k.Name)
	}

	t := structType(reflect.TypeOf(k.Model))
	if t == nil {
		return fmt.Errorf("revisionable: kind %s model must be a struct, got %T", k.Name, k.Model)
	}
	k.modelType = t

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[k.Name]; exists {
		return fmt.Errorf("revisionable: kind %s already registered", k.Name)
	}
	kind := &k
	r.kinds[k.Name] = kind
	r.byType[t] = kind
	return nil
}

// Alias maps an alternative type name (for example a renamed model) onto a registered kind.
func (r *Registry) Alias(alias, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[name]; !ok {
		return fmt.Errorf("revisionable: alias %s targets %w: %s", alias, ErrUnknownEntityType, name)
	}
	r.aliases[alias] = name
	return nil
}

// Resolve returns the kind for a stored type name, consulting aliases first.
func (r *Registry) Resolve(typeName string) (*Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name := typeName
	if target, ok := r.aliases[typeName]; ok {
		name = target
	}
	kind, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, typeName)
	}
	return kind, nil
}

// KindOf returns the kind registered for a model type.
func (r *Registry) KindOf(t reflect.Type) (*Kind, error) {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, t)
	}
	return kind, nil
}

// Names returns the kind name followed by every alias that targets it.
func (r *Registry) Names(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var aliases []string
	for alias, target := range r.aliases {
		if target == name {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return append([]string{name}, aliases...)
}

func (r *Registry) Kinds() []*Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
