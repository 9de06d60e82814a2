package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xhad/medscan/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var spaceRun = regexp.MustCompile(`\s+`)

// NameRules are ordered from the most specific label to bare honorifics.
var NameRules = []Rule[string]{
	nameRule("name-line", `name\s*[-:–]?\s*([a-z][a-z\s.]+?)(?:\n|$)`),
	nameRule("patient-name", `patient\s*name\s*[-:–]?\s*([a-z][a-z\s.]+?)(?:\n|age|dob)`),
	nameRule("name-before-age", `name\s*[-:–]?\s*([a-z][a-z\s.]+?)(?:\n|age|dob)`),
	nameRule("patient", `patient\s*[-:–]?\s*([a-z][a-z\s.]+?)(?:\n|age|dob)`),
	nameRule("mr", `mr\.\s*([a-z]+)`),
	nameRule("mrs", `mrs\.\s*([a-z]+)`),
	nameRule("ms", `ms\.\s*([a-z]+)`),
}

var AgeRules = []Rule[int]{
	ageRule("age-label", `age\s*[-:–]?\s*(\d{1,3})\s*(?:years?|yrs?)?`),
	ageRule("years-old", `(\d{1,3})\s*(?:years?|yrs?)\s*old`),
	ageRule("age-separator", `age\s*[-:–]\s*(\d{1,3})`),
	ageRule("dash-years", `[-–]\s*(\d{1,3})\s*years?`),
}

var GenderRules = []Rule[models.Gender]{
	genderRule("gender-label", `gender\s*:?\s*(male|female|m/f|m|f)`),
	genderRule("sex-label", `sex\s*:?\s*(male|female|m/f|m|f)`),
	genderRule("bare-word", `\b(male|female)\b`),
}

var HeightRules = []Rule[int]{
	{
		Name:    "height-cm",
		Pattern: regexp.MustCompile(`height\s*:?\s*(\d{2,3})\s*cm`),
		Convert: func(g []string) (int, error) { return strconv.Atoi(g[1]) },
		Valid:   between(50, 250),
	},
	{
		Name:    "height-feet-inches",
		Pattern: regexp.MustCompile(`height\s*:?\s*(\d)\s*'\s*(\d{1,2})`),
		Convert: func(g []string) (int, error) {
			feet, err := strconv.Atoi(g[1])
			if err != nil {
				return 0, err
			}
			inches, err := strconv.Atoi(g[2])
			if err != nil {
				return 0, err
			}
			return int(math.Round(float64(feet*12+inches) * 2.54)), nil
		},
		Valid: between(50, 250),
	},
}

var WeightRules = []Rule[int]{
	{
		Name:    "weight-kg",
		Pattern: regexp.MustCompile(`weight\s*:?\s*(\d{2,3})\s*kg`),
		Convert: func(g []string) (int, error) { return strconv.Atoi(g[1]) },
		Valid:   between(2, 400),
	},
	{
		Name:    "weight-lb",
		Pattern: regexp.MustCompile(`weight\s*:?\s*(\d{2,3})\s*lbs?`),
		Convert: func(g []string) (int, error) {
			lb, err := strconv.Atoi(g[1])
			if err != nil {
				return 0, err
			}
			return int(math.Round(float64(lb) * 0.453592)), nil
		},
		Valid: between(2, 400),
	},
}

func nameRule(name, pattern string) Rule[string] {
	return Rule[string]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Convert: func(g []string) (string, error) {
			n := spaceRun.ReplaceAllString(strings.TrimSpace(g[1]), " ")
			return strings.TrimSpace(strings.ReplaceAll(n, ".", "")), nil
		},
		Valid: func(n string) bool {
			l := utf8.RuneCountInString(n)
			return l > 2 && l < 50
		},
	}
}

func ageRule(name, pattern string) Rule[int] {
	return Rule[int]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Convert: func(g []string) (int, error) { return strconv.Atoi(g[1]) },
		Valid:   between(1, 120),
	}
}

func genderRule(name, pattern string) Rule[models.Gender] {
	return Rule[models.Gender]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Convert: func(g []string) (models.Gender, error) { return ParseGender(g[1]), nil },
	}
}

func between(lo, hi int) func(int) bool {
	return func(v int) bool { return v >= lo && v <= hi }
}

// ParseGender maps gender text to one of the three canonical values.
func ParseGender(s string) models.Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return models.GenderMale
	case "female", "f":
		return models.GenderFemale
	default:
		return models.GenderOther
	}
}

// TitleCase upper-cases the first letter of every word.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// FieldExtractor pulls demographics out of lower-cased report text.
type FieldExtractor struct{}

func NewFieldExtractor() FieldExtractor {
	return FieldExtractor{}
}

// Extract returns whatever fields could be found. The returned errors are
// captures that were skipped.
func (FieldExtractor) Extract(text string) (models.PatientDetails, []error) {
	var details models.PatientDetails
	var errs []error

	name, ok, e := FirstMatch("name", NameRules, text)
	errs = append(errs, e...)
	if ok {
		name = TitleCase(name)
		details.Name = &name
	}

	age, ok, e := FirstMatch("age", AgeRules, text)
	errs = append(errs, e...)
	if ok {
		details.Age = &age
	}

	gender, ok, e := FirstMatch("gender", GenderRules, text)
	errs = append(errs, e...)
	if ok {
		details.Gender = &gender
	}

	height, ok, e := FirstMatch("height", HeightRules, text)
	errs = append(errs, e...)
	if ok {
		details.HeightCM = &height
	}

	weight, ok, e := FirstMatch("weight", WeightRules, text)
	errs = append(errs, e...)
	if ok {
		details.WeightKG = &weight
	}

	return details, errs
}
