package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/totegamma/catalog/internal/utils"
	"github.com/totegamma/catalog/schemas"
)

type ExtensionConfig struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Extension is a named set of additional property fields.
type Extension struct {
	Config           ExtensionConfig `json:"config"`
	PropertiesSchema PropertySchema  `json:"propertiesSchema"`
}

// Lookup resolves an extension identifier.
type Lookup interface {
	Lookup(id string) (Extension, bool)
}

// Registry holds extensions in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	byID    map[string]Extension
	version uint64
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Extension)}
}

// NewBuiltinRegistry returns a registry preloaded with the extensions
// shipped in the schemas package.
func NewBuiltinRegistry() (*Registry, error) {
	r := NewRegistry()
	raws, err := schemas.Extensions()
	if err != nil {
		return nil, err
	}
	for _, raw := range raws {
		var ext Extension
		if err := json.Unmarshal(raw, &ext); err != nil {
			return nil, fmt.Errorf("failed to decode builtin extension: %w", err)
		}
		if err := r.Register(ext); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(ext Extension) error {
	id := strings.TrimSpace(ext.Config.ID)
	if id == "" {
		return fmt.Errorf("extension id is required")
	}
	ext.Config.ID = id

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("extension %s already registered", id)
	}
	ext.PropertiesSchema = PropertySchema{}.Merge(ext.PropertiesSchema)
	r.byID[id] = ext
	r.order = append(r.order, id)
	r.version++
	return nil
}

func (r *Registry) Lookup(id string) (Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.byID[id]
	if !ok {
		return Extension{}, false
	}
	ext.PropertiesSchema = PropertySchema{}.Merge(ext.PropertiesSchema)
	return ext, true
}

func (r *Registry) List() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Extension, 0, len(r.order))
	for _, id := range r.order {
		ext := r.byID[id]
		ext.PropertiesSchema = PropertySchema{}.Merge(ext.PropertiesSchema)
		out = append(out, ext)
	}
	return out
}

// Listing renders the registry keyed by id, in registration order.
func (r *Registry) Listing() *utils.OrderedMap[Extension] {
	out := utils.NewOrderedMap[Extension]()
	for _, ext := range r.List() {
		out.Set(ext.Config.ID, ext)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Version changes on every registration.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Map is a fixed, unordered registry.
type Map map[string]Extension

func (m Map) Lookup(id string) (Extension, bool) {
	ext, ok := m[id]
	return ext, ok
}
