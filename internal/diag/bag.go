package diag

// FileMap groups diagnostics by the path the checker printed.
// Files keep the order of their first diagnostic, and diagnostics inside a
// file keep emission order (not sorted).
type FileMap struct {
	order []string
	items map[string][]Diagnostic
	all   []Diagnostic // emission order across files
}

func NewFileMap() *FileMap {
	return &FileMap{items: make(map[string][]Diagnostic)}
}

// Add appends d under d.Path.
func (m *FileMap) Add(d Diagnostic) {
	if _, ok := m.items[d.Path]; !ok {
		m.order = append(m.order, d.Path)
	}
	m.items[d.Path] = append(m.items[d.Path], d)
	m.all = append(m.all, d)
}

// Paths возвращает пути в порядке первого появления.
func (m *FileMap) Paths() []string {
	if m == nil {
		return nil
	}
	return m.order
}

// Get returns diagnostics for path. Не модифицируйте возвращаемый срез.
func (m *FileMap) Get(path string) []Diagnostic {
	if m == nil {
		return nil
	}
	return m.items[path]
}

// Len is the total number of diagnostics.
func (m *FileMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.all)
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (m *FileMap) HasErrors() bool {
	if m == nil {
		return false
	}
	for _, items := range m.items {
		for i := range items {
			if items[i].Severity >= SevError {
				return true
			}
		}
	}
	return false
}

// All returns every diagnostic in the order the checker emitted them.
func (m *FileMap) All() []Diagnostic {
	if m == nil {
		return nil
	}
	return append([]Diagnostic(nil), m.all...)
}
