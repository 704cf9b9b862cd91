package notify

// Registry is a simple map-based channel registry.
type Registry struct {
	channels map[string]Channel
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]Channel),
	}
}

// Register adds ch under its own name.
func (r *Registry) Register(ch Channel) {
	r.channels[ch.Name()] = ch
}

// Get returns the channel registered under name, or false.
func (r *Registry) Get(name string) (Channel, bool) {
	ch, ok := r.channels[name]
	return ch, ok
}
