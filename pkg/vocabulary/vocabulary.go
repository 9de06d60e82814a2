package vocabulary

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one canonical disease and the phrases that indicate it.
type Entry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// file is the on-disk layout of a vocabulary YAML file.
type file struct {
	Diseases  []Entry  `yaml:"diseases"`
	Allergies []string `yaml:"allergies"`
}

// Vocabulary is the disease dictionary and allergy term list. It is built
// once and only read afterwards, so one value can be shared by every
// pipeline in the process.
type Vocabulary struct {
	diseases  []Entry
	allergies []string
}

// New copies and lower-cases the given terms into a Vocabulary.
func New(diseases []Entry, allergies []string) (*Vocabulary, error) {
	v := &Vocabulary{
		diseases:  make([]Entry, 0, len(diseases)),
		allergies: make([]string, 0, len(allergies)),
	}
	for _, d := range diseases {
		e := Entry{Name: strings.TrimSpace(d.Name), Keywords: make([]string, 0, len(d.Keywords))}
		for _, k := range d.Keywords {
			e.Keywords = append(e.Keywords, strings.ToLower(strings.TrimSpace(k)))
		}
		v.diseases = append(v.diseases, e)
	}
	for _, a := range allergies {
		v.allergies = append(v.allergies, strings.ToLower(strings.TrimSpace(a)))
	}

	if errs := v.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid vocabulary: %v", errs[0])
	}
	return v, nil
}

// Load parses a vocabulary from YAML. Sections that are missing fall back to
// the built-in lists.
func Load(data []byte) (*Vocabulary, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing vocabulary: %w", err)
	}
	if len(f.Diseases) == 0 {
		f.Diseases = defaultDiseases
	}
	if len(f.Allergies) == 0 {
		f.Allergies = defaultAllergies
	}
	return New(f.Diseases, f.Allergies)
}

// LoadFile reads a vocabulary file from disk.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading vocabulary file: %w", err)
	}
	return Load(data)
}

// LoadFiles builds a vocabulary from separate disease and allergy files.
// Either path may be empty to keep the built-in list for that section.
func LoadFiles(diseasesPath, allergiesPath string) (*Vocabulary, error) {
	var f file
	for _, path := range []string{diseasesPath, allergiesPath} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading vocabulary file: %w", err)
		}
		var part file
		if err := yaml.Unmarshal(data, &part); err != nil {
			return nil, fmt.Errorf("error parsing vocabulary file %s: %w", path, err)
		}
		if len(part.Diseases) > 0 {
			f.Diseases = part.Diseases
		}
		if len(part.Allergies) > 0 {
			f.Allergies = part.Allergies
		}
	}
	if len(f.Diseases) == 0 {
		f.Diseases = defaultDiseases
	}
	if len(f.Allergies) == 0 {
		f.Allergies = defaultAllergies
	}
	return New(f.Diseases, f.Allergies)
}

// Diseases returns a copy of the disease entries in match order.
func (v *Vocabulary) Diseases() []Entry {
	out := make([]Entry, len(v.diseases))
	for i, d := range v.diseases {
		out[i] = Entry{Name: d.Name, Keywords: append([]string(nil), d.Keywords...)}
	}
	return out
}

// DiseaseNames returns the canonical labels in match order.
func (v *Vocabulary) DiseaseNames() []string {
	names := make([]string, len(v.diseases))
	for i, d := range v.diseases {
		names[i] = d.Name
	}
	return names
}

// Allergies returns a copy of the allergy terms.
func (v *Vocabulary) Allergies() []string {
	return append([]string(nil), v.allergies...)
}

// Marshal renders the vocabulary back to YAML.
func (v *Vocabulary) Marshal() ([]byte, error) {
	return yaml.Marshal(file{Diseases: v.Diseases(), Allergies: v.Allergies()})
}
