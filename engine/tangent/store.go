package tangent

// OrcoLayerName is the reserved name of the tangent layer computed from
// original coordinates. No UV layer can be named so.
const OrcoLayerName = ""

// Layer holds one tangent per corner: xyz and the handedness sign (+1 or -1).
type Layer struct {
	Name string
	Data [][4]float32
}

/**
 * @brief Temporary per-corner tangent layers, queryable by name and by
 * ordinal. Layers keep the order they were added in.
 */
type Store struct {
	corners int
	layers  []Layer
}

func NewStore(corners int) *Store {
	return &Store{corners: corners}
}

// Corners is the number of values in every layer.
func (s *Store) Corners() int {
	return s.corners
}

// Add appends a zeroed layer and returns its data.
func (s *Store) Add(name string) [][4]float32 {
	data := make([][4]float32, s.corners)
	s.layers = append(s.layers, Layer{Name: name, Data: data})
	return data
}

func (s *Store) Len() int {
	return len(s.layers)
}

// Layer returns the data of the n-th layer, nil when out of range.
func (s *Store) Layer(n int) [][4]float32 {
	if n < 0 || n >= len(s.layers) {
		return nil
	}
	return s.layers[n].Data
}

func (s *Store) LayerName(n int) string {
	return s.layers[n].Name
}

// Index returns the ordinal of the layer called name, or -1.
func (s *Store) Index(name string) int {
	for i := range s.layers {
		if s.layers[i].Name == name {
			return i
		}
	}
	return -1
}

// Named returns the data of the layer called name, nil when missing.
func (s *Store) Named(name string) [][4]float32 {
	return s.Layer(s.Index(name))
}
