package render

import (
	"github.com/google/uuid"

	"github.com/oakwood-commons/jsontable/internal/expansion"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// focusNamespace scopes the name-based UUIDs handed out for focus targets.
var focusNamespace = uuid.MustParse("6f1c2a8e-4d0b-5c7e-9a1f-3b2d4e6f8a01")

// Target is what a focus affordance resolves to.
type Target struct {
	ID          string
	Data        jsonvalue.Value
	DisplayName string
	Breadcrumb  []string
	Key         expansion.Key
}

// Registry maps opaque focus IDs back to the values they were attached to.
// It is rebuilt on every render pass.
type Registry struct {
	entries map[string]Target
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Target)}
}

// Reset drops every entry.
func (r *Registry) Reset() {
	clear(r.entries)
	r.order = r.order[:0]
}

// Register records data under an ID derived from the cell key, so the same
// cell gets the same ID on every render. parent is the breadcrumb path of the
// table being rendered.
func (r *Registry) Register(key expansion.Key, data jsonvalue.Value, displayName string, parent []string) string {
	id := uuid.NewSHA1(focusNamespace, []byte(key.String())).String()
	if _, exists := r.entries[id]; !exists {
		r.order = append(r.order, id)
	}
	path := make([]string, 0, len(parent)+1)
	path = append(path, parent...)
	path = append(path, displayName)
	r.entries[id] = Target{
		ID:          id,
		Data:        data,
		DisplayName: displayName,
		Breadcrumb:  path,
		Key:         key,
	}
	return id
}

// Lookup resolves a focus ID.
func (r *Registry) Lookup(id string) (Target, bool) {
	t, ok := r.entries[id]
	return t, ok
}

// Len returns the number of registered targets.
func (r *Registry) Len() int { return len(r.entries) }

// Targets returns the registered targets in registration order.
func (r *Registry) Targets() []Target {
	out := make([]Target, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}
