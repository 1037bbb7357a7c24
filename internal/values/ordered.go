package values

// OrderedMap is an insertion-ordered string-keyed map, shared by Dictionary
// values and Color.Dynamic attribute sets (spec §4.3: both need
// "insertion order" semantics for keys()/iteration/string rendering).
type OrderedMap struct {
	keys []string
	data map[string]Value
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{data: make(map[string]Value)}
}

// Set inserts or updates key, preserving original insertion position on
// update (spec: updating an existing key does not move it to the end).
func (m *OrderedMap) Set(key string, v Value) {
	if _, exists := m.data[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.data[key] = v
}

func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *OrderedMap) Delete(key string) bool {
	if _, ok := m.data[key]; !ok {
		return false
	}
	delete(m.data, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

func (m *OrderedMap) Clear() {
	m.keys = nil
	m.data = make(map[string]Value)
}

func (m *OrderedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *OrderedMap) Len() int { return len(m.keys) }

// Clone deep-copies the map and every value it holds.
func (m *OrderedMap) Clone() *OrderedMap {
	clone := &OrderedMap{
		keys: append([]string(nil), m.keys...),
		data: make(map[string]Value, len(m.data)),
	}
	for k, v := range m.data {
		clone.data[k] = v.DeepCopy()
	}
	return clone
}

// Equals compares key order and deep value equality.
func (m *OrderedMap) Equals(other *OrderedMap) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		ov, ok := other.data[k]
		if !ok || !m.data[k].Equals(ov) {
			return false
		}
	}
	return true
}
