package vocabulary

import (
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (v *Vocabulary) Validate() []ValidationError {
	var errors []ValidationError

	if len(v.diseases) == 0 {
		errors = append(errors, ValidationError{
			Field:   "diseases",
			Message: "at least one disease is required",
		})
	}

	seen := make(map[string]bool)
	for i, d := range v.diseases {
		field := fmt.Sprintf("diseases[%d]", i)
		if d.Name == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Message: "name is required",
			})
			continue
		}
		// "None" is reserved for results without findings
		if d.Name == "None" {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Message: "None is reserved",
			})
		}
		if seen[d.Name] {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate disease: %s", d.Name),
			})
		}
		seen[d.Name] = true

		if len(d.Keywords) == 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".keywords",
				Message: fmt.Sprintf("%s has no keywords", d.Name),
			})
		}
		for _, k := range d.Keywords {
			if k == "" {
				errors = append(errors, ValidationError{
					Field:   field + ".keywords",
					Message: fmt.Sprintf("%s has an empty keyword", d.Name),
				})
				break
			}
		}
	}

	for i, a := range v.allergies {
		if a == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("allergies[%d]", i),
				Message: "empty allergy term",
			})
		}
	}

	return errors
}
