package extractor

import (
	"regexp"
	"strconv"

	"github.com/xhad/medscan/internal/models"
)

// sep is what may sit between a lab label and its value: colons, spaces,
// dashes and en-dashes.
const sep = `[:\s\-–]*`

// bloodPressure holds both readings from a single "120/80" match.
type bloodPressure struct {
	systolic  float64
	diastolic float64
}

var bloodPressureRules = []Rule[bloodPressure]{
	bpRule("blood-pressure", `blood\s*pressure`+sep+`(\d{2,3})[/\\](\d{2,3})`),
	bpRule("bp", `\bbp`+sep+`(\d{2,3})[/\\](\d{2,3})`),
}

// LabRules lists the single-value measurements and their ordered patterns.
// Abbreviations start at a word boundary so "vldl" is not read as "ldl".
var LabRules = []struct {
	Key   models.LabKey
	Rules []Rule[float64]
}{
	{models.LabTotalCholesterol, []Rule[float64]{
		labRule("total-cholesterol-mg", `total\s*cholesterol`+sep+`(\d{2,3}\.?\d*)\s*mg`),
		labRule("cholesterol-mg", `cholesterol`+sep+`(\d{2,3}\.?\d*)\s*mg`),
		labRule("total-chol", `total\s*chol`+sep+`(\d{2,3}\.?\d*)`),
	}},
	{models.LabLDL, []Rule[float64]{
		labRule("ldl-mg", `\bldl`+sep+`(\d{2,3}\.?\d*)\s*mg`),
		labRule("ldl-cholesterol", `\bldl\s*cholesterol`+sep+`(\d{2,3}\.?\d*)`),
	}},
	{models.LabHDL, []Rule[float64]{
		labRule("hdl-mg", `\bhdl`+sep+`(\d{1,3}\.?\d*)\s*mg`),
		labRule("hdl-cholesterol", `\bhdl\s*cholesterol`+sep+`(\d{1,3}\.?\d*)`),
	}},
	{models.LabTriglycerides, []Rule[float64]{
		labRule("triglycerides-mg", `triglycerides?`+sep+`(\d{2,3}\.?\d*)\s*mg`),
		labRule("tg-mg", `\btg`+sep+`(\d{2,3}\.?\d*)\s*mg`),
	}},
	{models.LabBloodSugar, []Rule[float64]{
		labRule("fasting-blood-sugar-mg", `fasting\s*blood\s*sugar`+sep+`(\d{2,3}\.?\d*)\s*mg`),
		labRule("fbs-mg", `fbs`+sep+`(\d{2,3}\.?\d*)\s*mg`),
		labRule("blood-sugar-mg", `blood\s*sugar`+sep+`(\d{2,3}\.?\d*)\s*mg`),
		labRule("glucose-mg", `glucose`+sep+`(\d{2,3}\.?\d*)\s*mg`),
		labRule("blood-glucose", `blood\s*glucose`+sep+`(\d{2,3}\.?\d*)`),
	}},
	{models.LabHbA1c, []Rule[float64]{
		labRule("hba1c-percent", `hba1c`+sep+`(\d{1,2}\.?\d*)\s*%`),
		labRule("a1c", `\b(?:hb)?a1c`+sep+`(\d{1,2}\.?\d*)`),
	}},
}

func labRule(name, pattern string) Rule[float64] {
	return Rule[float64]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Convert: func(g []string) (float64, error) { return strconv.ParseFloat(g[1], 64) },
	}
}

func bpRule(name, pattern string) Rule[bloodPressure] {
	return Rule[bloodPressure]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Convert: func(g []string) (bloodPressure, error) {
			sys, err := strconv.ParseFloat(g[1], 64)
			if err != nil {
				return bloodPressure{}, err
			}
			dia, err := strconv.ParseFloat(g[2], 64)
			if err != nil {
				return bloodPressure{}, err
			}
			return bloodPressure{systolic: sys, diastolic: dia}, nil
		},
	}
}

// LabExtractor pulls numeric lab measurements out of lower-cased text.
type LabExtractor struct{}

func NewLabExtractor() LabExtractor {
	return LabExtractor{}
}

// Extract fills a key only when one of its rules matched. The returned
// errors are captures that were skipped.
func (LabExtractor) Extract(text string) (models.LabValues, []error) {
	values := make(models.LabValues)
	var errs []error

	bp, ok, e := FirstMatch("blood_pressure", bloodPressureRules, text)
	errs = append(errs, e...)
	if ok {
		values[models.LabSystolic] = bp.systolic
		values[models.LabDiastolic] = bp.diastolic
	}

	for _, lab := range LabRules {
		v, ok, e := FirstMatch(string(lab.Key), lab.Rules, text)
		errs = append(errs, e...)
		if ok {
			values[lab.Key] = v
		}
	}

	return values, errs
}
