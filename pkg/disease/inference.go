package disease

import (
	"fmt"

	"github.com/xhad/medscan/internal/models"
)

// LabRule flags Disease when the lab value for Key is at or above Threshold
// and, if Below is set, under Below.
type LabRule struct {
	Key       models.LabKey
	Threshold float64
	Below     float64
	Disease   string
	Reason    string
}

// LabRules is evaluated top to bottom; every rule is independent.
//
// Triglycerides count as High Cholesterol and pre-diabetic fasting sugar
// (100-125) counts as Diabetes; the diet planner has no category for either.
var LabRules = []LabRule{
	{Key: models.LabTotalCholesterol, Threshold: 200, Disease: "High Cholesterol", Reason: "total cholesterol borderline high"},
	{Key: models.LabLDL, Threshold: 130, Disease: "High Cholesterol", Reason: "LDL borderline high"},
	{Key: models.LabBloodSugar, Threshold: 126, Disease: "Diabetes", Reason: "fasting blood sugar in diabetic range"},
	{Key: models.LabBloodSugar, Threshold: 100, Below: 126, Disease: "Diabetes", Reason: "fasting blood sugar in pre-diabetic range"},
	{Key: models.LabHbA1c, Threshold: 6.5, Disease: "Diabetes", Reason: "HbA1c in diabetic range"},
	{Key: models.LabSystolic, Threshold: 140, Disease: "Hypertension", Reason: "systolic pressure high"},
	{Key: models.LabDiastolic, Threshold: 90, Disease: "Hypertension", Reason: "diastolic pressure high"},
	{Key: models.LabTriglycerides, Threshold: 150, Disease: "High Cholesterol", Reason: "triglycerides borderline high"},
}

// Finding records why a lab rule fired.
type Finding struct {
	Disease   string
	Key       models.LabKey
	Value     float64
	Threshold float64
	Reason    string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s %.1f >= %.1f (%s)", f.Disease, f.Key, f.Value, f.Threshold, f.Reason)
}

// InferFromLabs applies LabRules to whatever values are present. A missing
// value never counts as evidence either way.
func InferFromLabs(labs models.LabValues) *models.DiseaseSet {
	set, _ := InferFromLabsDetailed(labs)
	return set
}

// InferFromLabsDetailed also returns every rule that fired, including ones
// whose disease was already flagged.
func InferFromLabsDetailed(labs models.LabValues) (*models.DiseaseSet, []Finding) {
	set := models.NewDiseaseSet()
	var findings []Finding

	for _, r := range LabRules {
		v, ok := labs[r.Key]
		if !ok || v < r.Threshold || (r.Below > 0 && v >= r.Below) {
			continue
		}
		set.Add(r.Disease)
		findings = append(findings, Finding{
			Disease:   r.Disease,
			Key:       r.Key,
			Value:     v,
			Threshold: r.Threshold,
			Reason:    r.Reason,
		})
	}

	return set, findings
}
