package pipeline

import (
	"github.com/xhad/medscan/internal/models"
)

// MergeProfile folds a successful extraction into user-entered data.
// Diseases are unioned with "None" dropped once anything real is present,
// allergies are appended, and patient details only fill empty fields.
func MergeProfile(profile models.Profile, result models.ExtractionResult) models.Profile {
	if !result.Success {
		return profile
	}

	if result.HasDiseases() {
		set := models.NewDiseaseSet(profile.Diseases...).Union(models.NewDiseaseSet(result.Diseases...))
		diseases := set.Slice()
		if len(diseases) > 1 {
			diseases = withoutNone(diseases)
		}
		profile.Diseases = diseases
	}

	if result.Allergies != "" {
		if profile.Allergies != "" {
			profile.Allergies = profile.Allergies + ", " + result.Allergies
		} else {
			profile.Allergies = result.Allergies
		}
	}

	d := result.PatientDetails
	if profile.Name == "" && d.Name != nil {
		profile.Name = *d.Name
	}
	if profile.Age == 0 && d.Age != nil {
		profile.Age = *d.Age
	}
	if profile.Gender == "" && d.Gender != nil {
		profile.Gender = string(*d.Gender)
	}
	if profile.HeightCM == 0 && d.HeightCM != nil {
		profile.HeightCM = *d.HeightCM
	}
	if profile.WeightKG == 0 && d.WeightKG != nil {
		profile.WeightKG = *d.WeightKG
	}

	return profile
}

func withoutNone(diseases []string) []string {
	out := diseases[:0]
	for _, d := range diseases {
		if d != models.NoDisease {
			out = append(out, d)
		}
	}
	return out
}
