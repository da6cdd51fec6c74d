package routing

// PathBuilder produces a navigation path for a payload of the type it was
// registered under.
type PathBuilder func(p Payload) string

// Registry maps message types to path builders. The last registration for a
// given type wins; insertion order is irrelevant.
//
// A Registry is driven from the application's UI thread alongside the
// handler that owns it, so it does no locking of its own.
type Registry struct {
	builders map[string]PathBuilder
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]PathBuilder)}
}

// Register adds or replaces the builder for a message type.
func (r *Registry) Register(messageType string, builder PathBuilder) {
	if messageType == "" || builder == nil {
		return
	}
	r.builders[messageType] = builder
}

// RegisterAll adds every entry of the given map.
func (r *Registry) RegisterAll(builders map[string]PathBuilder) {
	for t, b := range builders {
		r.Register(t, b)
	}
}

// Resolve returns the navigation path for the payload, or ok=false when no
// builder is registered for its type.
func (r *Registry) Resolve(p Payload) (path string, ok bool) {
	if p.Type == "" {
		return "", false
	}
	builder, ok := r.builders[p.Type]
	if !ok {
		return "", false
	}
	return builder(p), true
}

// Len reports the number of registered types.
func (r *Registry) Len() int {
	return len(r.builders)
}

// Clear drops every registered route.
func (r *Registry) Clear() {
	r.builders = make(map[string]PathBuilder)
}
