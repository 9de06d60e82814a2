package models

// DiseaseSet is a set of disease labels that remembers insertion order so
// results serialize the same way every run.
type DiseaseSet struct {
	order []string
	seen  map[string]struct{}
}

// NewDiseaseSet returns a set holding labels in the given order.
func NewDiseaseSet(labels ...string) *DiseaseSet {
	s := &DiseaseSet{seen: make(map[string]struct{})}
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add inserts label and reports whether it was new.
func (s *DiseaseSet) Add(label string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[label]; ok {
		return false
	}
	s.seen[label] = struct{}{}
	s.order = append(s.order, label)
	return true
}

func (s *DiseaseSet) Has(label string) bool {
	_, ok := s.seen[label]
	return ok
}

func (s *DiseaseSet) Len() int {
	return len(s.order)
}

// Union adds every label of other, keeping s's labels first.
func (s *DiseaseSet) Union(other *DiseaseSet) *DiseaseSet {
	out := NewDiseaseSet(s.order...)
	if other != nil {
		for _, l := range other.order {
			out.Add(l)
		}
	}
	return out
}

// Slice returns a copy of the labels in insertion order.
func (s *DiseaseSet) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
