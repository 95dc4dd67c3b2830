package store

// Reference declares that records in a collection point at a record in
// another collection via the named attribute. The store has no native
// foreign keys; the reference edge drives the explicit existence probe.
type Reference struct {
	// Collection is the referenced collection (e.g., "users").
	Collection string

	// Attr is the attribute in the dependent record holding the
	// referenced key (e.g., "user_id").
	Attr string
}

// Schema describes one collection: its key attribute, the attributes the
// store knows about (used to validate scan filters), and an optional
// reference edge.
type Schema struct {
	// Collection is the logical collection name (e.g., "preferences").
	Collection string

	// KeyAttr is the natural key attribute (e.g., "user_id").
	KeyAttr string

	// Attrs lists the known attribute names. Scan filters on attributes
	// outside this set degrade to a plain scan.
	Attrs []string

	// Ref is the reference edge, nil for root collections.
	Ref *Reference
}

// knownAttr reports whether attr is the key attribute or a listed attribute.
func (s Schema) knownAttr(attr string) bool {
	if attr == s.KeyAttr {
		return true
	}
	for _, a := range s.Attrs {
		if a == attr {
			return true
		}
	}
	return false
}

// Registry holds the schemas of all known collections.
type Registry struct {
	schemas map[string]Schema
	order   []string
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]Schema)}
}

// Register adds a collection schema to the registry.
func (r *Registry) Register(s Schema) {
	if _, ok := r.schemas[s.Collection]; !ok {
		r.order = append(r.order, s.Collection)
	}
	r.schemas[s.Collection] = s
}

// Lookup returns the schema for a collection.
func (r *Registry) Lookup(collection string) (Schema, bool) {
	s, ok := r.schemas[collection]
	return s, ok
}

// Collections returns all registered collection names in registration order.
func (r *Registry) Collections() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Dependents returns the schemas of all collections that reference the
// given collection.
func (r *Registry) Dependents(collection string) []Schema {
	var out []Schema
	for _, name := range r.order {
		s := r.schemas[name]
		if s.Ref != nil && s.Ref.Collection == collection {
			out = append(out, s)
		}
	}
	return out
}
