package extractor

import (
	"fmt"
	"regexp"
)

// Rule is one entry of an ordered pattern list. Rules are tried in order and
// the first one that matches and converts to a valid value wins.
type Rule[T any] struct {
	Name    string
	Pattern *regexp.Regexp
	// Convert turns the submatches (index 0 is the whole match) into a value.
	Convert func(groups []string) (T, error)
	// Valid rejects values outside the plausible range. Nil accepts all.
	Valid func(T) bool
}

// PatternParseError reports a capture that matched a rule but could not be
// converted. The value is skipped and extraction continues.
type PatternParseError struct {
	Field   string
	Rule    string
	Capture string
	Err     error
}

func (e *PatternParseError) Error() string {
	return fmt.Sprintf("%s: rule %s: cannot parse %q: %v", e.Field, e.Rule, e.Capture, e.Err)
}

func (e *PatternParseError) Unwrap() error {
	return e.Err
}

// FirstMatch evaluates rules in order against text. Conversion failures are
// collected and the next rule is tried.
func FirstMatch[T any](field string, rules []Rule[T], text string) (T, bool, []error) {
	var zero T
	var errs []error

	for _, r := range rules {
		groups := r.Pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		v, err := r.Convert(groups)
		if err != nil {
			errs = append(errs, &PatternParseError{
				Field:   field,
				Rule:    r.Name,
				Capture: groups[len(groups)-1],
				Err:     err,
			})
			continue
		}
		if r.Valid != nil && !r.Valid(v) {
			continue
		}
		return v, true, errs
	}

	return zero, false, errs
}
