package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/medscan/internal/models"
)

func TestMergeProfile(t *testing.T) {
	name := "Mr Amarasena"
	age := 56
	male := models.GenderMale

	tests := []struct {
		name    string
		profile models.Profile
		result  models.ExtractionResult
		want    models.Profile
	}{
		{
			name:    "failed result leaves profile alone",
			profile: models.Profile{Diseases: []string{"Asthma"}, Allergies: "Dust"},
			result:  models.ExtractionResult{Success: false, Diseases: []string{"Diabetes"}, Allergies: "Peanuts"},
			want:    models.Profile{Diseases: []string{"Asthma"}, Allergies: "Dust"},
		},
		{
			name:    "none placeholder is dropped",
			profile: models.Profile{Diseases: []string{models.NoDisease}},
			result:  models.ExtractionResult{Success: true, Diseases: []string{"Diabetes"}},
			want:    models.Profile{Diseases: []string{"Diabetes"}},
		},
		{
			name:    "union keeps profile order",
			profile: models.Profile{Diseases: []string{"Hypertension", "Diabetes"}},
			result:  models.ExtractionResult{Success: true, Diseases: []string{"Diabetes", "High Cholesterol"}},
			want:    models.Profile{Diseases: []string{"Hypertension", "Diabetes", "High Cholesterol"}},
		},
		{
			name:    "result without findings keeps profile diseases",
			profile: models.Profile{Diseases: []string{"Asthma"}},
			result:  models.ExtractionResult{Success: true, Diseases: []string{models.NoDisease}},
			want:    models.Profile{Diseases: []string{"Asthma"}},
		},
		{
			name:    "allergies are appended",
			profile: models.Profile{Allergies: "Dust"},
			result:  models.ExtractionResult{Success: true, Allergies: "Peanuts, Shellfish"},
			want:    models.Profile{Allergies: "Dust, Peanuts, Shellfish"},
		},
		{
			name:    "allergies fill an empty profile",
			result:  models.ExtractionResult{Success: true, Allergies: "Peanuts"},
			want:    models.Profile{Allergies: "Peanuts"},
		},
		{
			name:    "details only fill empty fields",
			profile: models.Profile{Name: "Amara", Age: 0},
			result: models.ExtractionResult{Success: true, PatientDetails: models.PatientDetails{
				Name:   &name,
				Age:    &age,
				Gender: &male,
			}},
			want: models.Profile{Name: "Amara", Age: 56, Gender: "Male"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeProfile(tt.profile, tt.result))
		})
	}
}

func TestMergeProfile_FromExtraction(t *testing.T) {
	p := New(nil)
	result := p.Extract("known diabetic. allergic to peanuts, shellfish")

	merged := MergeProfile(models.Profile{Diseases: []string{models.NoDisease}, Allergies: "Dust"}, result)
	assert.Equal(t, []string{"Diabetes"}, merged.Diseases)
	assert.Equal(t, "Dust, Peanuts, Shellfish", merged.Allergies)
}
