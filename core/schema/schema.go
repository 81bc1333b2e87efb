package schema

// Schema holds the property definitions of one resource type.
// Properties are registered once, typically at startup; a Schema is not safe
// for concurrent Add calls but may be read concurrently afterwards.
type Schema struct {
	properties map[string]Property
	order      []string
}

// New creates an empty schema.
func New() *Schema {
	return &Schema{
		properties: make(map[string]Property),
	}
}

// Add registers a property, replacing any previous definition with the same name.
func (s *Schema) Add(name string, opts Options) {
	if _, exists := s.properties[name]; !exists {
		s.order = append(s.order, name)
	}
	s.properties[name] = Property{
		Name:    name,
		Type:    opts.Type,
		Default: opts.Default,
		Caster:  opts.Caster,
	}
}

// Find looks up a property by name.
func (s *Schema) Find(name string) (Property, bool) {
	if s == nil {
		return Property{}, false
	}
	p, ok := s.properties[name]
	return p, ok
}

// Size returns the number of registered properties.
func (s *Schema) Size() int {
	if s == nil {
		return 0
	}
	return len(s.properties)
}

// Each calls fn for every property in registration order.
func (s *Schema) Each(fn func(Property)) {
	if s == nil {
		return
	}
	for _, name := range s.order {
		fn(s.properties[name])
	}
}

// Names returns property names in registration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Cast casts value using the named property.
// Values of unregistered properties pass through unchanged.
func (s *Schema) Cast(name string, value any) (any, error) {
	p, ok := s.Find(name)
	if !ok {
		return value, nil
	}
	return p.Cast(value)
}

// CastAttributes returns a new map with every attribute cast through the schema.
// Missing attributes whose property declares a non-nil Default are filled in.
func (s *Schema) CastAttributes(attrs map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(attrs))
	for k, v := range attrs {
		cast, err := s.Cast(k, v)
		if err != nil {
			return nil, err
		}
		result[k] = cast
	}

	var err error
	s.Each(func(p Property) {
		if err != nil || p.Default == nil {
			return
		}
		if _, present := result[p.Name]; present {
			return
		}
		result[p.Name], err = p.Cast(p.Default)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
