package preset

// Memory is an in-process preset map with the same surface as Store.
// Used by tests and sessions without a presets path configured.
type Memory struct {
	presets map[string][]byte
}

// NewMemory returns an empty in-memory preset map.
func NewMemory() *Memory {
	return &Memory{presets: make(map[string][]byte)}
}

// Set stores a copy of the preset for a node path.
func (m *Memory) Set(path string, preset []byte) error {
	blob := make([]byte, len(preset))
	copy(blob, preset)
	m.presets[path] = blob
	return nil
}

// Get returns the preset for a node path.
func (m *Memory) Get(path string) ([]byte, bool) {
	preset, ok := m.presets[path]
	return preset, ok
}

// Contains reports whether a preset exists for the node path.
func (m *Memory) Contains(path string) bool {
	_, ok := m.presets[path]
	return ok
}

// Delete removes the preset for a node path.
func (m *Memory) Delete(path string) error {
	delete(m.presets, path)
	return nil
}
