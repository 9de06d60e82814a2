package models

// Gender is one of the three canonical gender values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// PatientDetails holds demographics found in a report. Nil fields were not
// found or failed validation; nothing is defaulted here.
type PatientDetails struct {
	Name     *string `json:"name,omitempty"`
	Age      *int    `json:"age,omitempty"`
	Gender   *Gender `json:"gender,omitempty"`
	HeightCM *int    `json:"height,omitempty"`
	WeightKG *int    `json:"weight,omitempty"`
}

// IsEmpty reports whether no field was extracted.
func (p PatientDetails) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.Gender == nil && p.HeightCM == nil && p.WeightKG == nil
}

// LabKey names one measurement in LabValues.
type LabKey string

const (
	LabSystolic         LabKey = "blood_pressure_systolic"
	LabDiastolic        LabKey = "blood_pressure_diastolic"
	LabTotalCholesterol LabKey = "total_cholesterol"
	LabLDL              LabKey = "ldl_cholesterol"
	LabHDL              LabKey = "hdl_cholesterol"
	LabTriglycerides    LabKey = "triglycerides"
	LabBloodSugar       LabKey = "blood_sugar"
	LabHbA1c            LabKey = "hba1c"
)

// LabKeys lists every measurement key in canonical order.
var LabKeys = []LabKey{
	LabSystolic,
	LabDiastolic,
	LabTotalCholesterol,
	LabLDL,
	LabHDL,
	LabTriglycerides,
	LabBloodSugar,
	LabHbA1c,
}

// LabValues maps measurement keys to magnitudes (mg/dL, mmHg or percent).
// A key is present only when one of its patterns matched.
type LabValues map[LabKey]float64

// Vector returns the values in LabKeys order, zero for missing keys.
func (l LabValues) Vector() []float32 {
	v := make([]float32, len(LabKeys))
	for i, k := range LabKeys {
		v[i] = float32(l[k])
	}
	return v
}

// NoDisease is the placeholder reported when no disease was found.
const NoDisease = "None"

// ExtractionResult is the structured record produced for one document.
type ExtractionResult struct {
	PatientDetails PatientDetails `json:"patient_details"`
	Diseases       []string       `json:"diseases"`
	Allergies      string         `json:"allergies"`
	LabValues      LabValues      `json:"lab_values"`
	RawTextPreview string         `json:"raw_text_preview"`
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
}

// HasDiseases reports whether the result carries real findings rather than
// the NoDisease placeholder.
func (r ExtractionResult) HasDiseases() bool {
	for _, d := range r.Diseases {
		if d != NoDisease {
			return true
		}
	}
	return false
}

// Profile is user-entered health data that extraction results are merged into.
type Profile struct {
	Name      string   `json:"name,omitempty"`
	Age       int      `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	HeightCM  int      `json:"height,omitempty"`
	WeightKG  int      `json:"weight,omitempty"`
	Diseases  []string `json:"diseases"`
	Allergies string   `json:"allergies"`
}
