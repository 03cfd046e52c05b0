package attrib

import "github.com/otl-tools/otlbridge/pkg/hapi"

// Manager owns the paintable attributes of one geometry node. At most one
// attribute is active for painting at a time, and the manager is always
// bound to the node's first part.
type Manager struct {
	vertexCount int
	attributes  []*Attribute
	active      *Attribute
}

// NewManager returns a manager for a part with the given vertex count.
func NewManager(vertexCount int) *Manager {
	return &Manager{vertexCount: vertexCount}
}

// CreateAttribute adds a new, still-undefined attribute. The caller
// initializes it with Init or InitPreset.
func (m *Manager) CreateAttribute(name string) *Attribute {
	a := New()
	a.Name = name
	m.attributes = append(m.attributes, a)
	if m.active == nil {
		m.active = a
	}
	return a
}

// Attribute returns the attribute with the given name.
func (m *Manager) Attribute(name string) (*Attribute, error) {
	for _, a := range m.attributes {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, hapi.NotFound("attrib: no attribute named %q", name)
}

// Attributes returns all attributes in creation order.
func (m *Manager) Attributes() []*Attribute {
	return m.attributes
}

// Active returns the attribute current paint strokes apply to, or nil.
func (m *Manager) Active() *Attribute {
	return m.active
}

// SetActive switches the paint target by name.
func (m *Manager) SetActive(name string) error {
	a, err := m.Attribute(name)
	if err != nil {
		return err
	}
	m.active = a
	return nil
}

// VertexCount returns the vertex count of the bound part.
func (m *Manager) VertexCount() int {
	return m.vertexCount
}
