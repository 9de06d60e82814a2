package pipeline

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/medscan/internal/models"
	"github.com/xhad/medscan/pkg/disease"
)

func readSample(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/sample_report.txt")
	require.NoError(t, err)
	return string(data)
}

func TestExtract_SampleReport(t *testing.T) {
	text := readSample(t)
	result := New(nil).Extract(text)

	require.True(t, result.Success)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.PatientDetails.Name)
	assert.Equal(t, "Mr Amarasena", *result.PatientDetails.Name)
	require.NotNil(t, result.PatientDetails.Age)
	assert.Equal(t, 56, *result.PatientDetails.Age)
	assert.Equal(t, []string{"High Cholesterol"}, result.Diseases)
	assert.Equal(t, "", result.Allergies)
	assert.Equal(t, models.LabValues{
		models.LabTotalCholesterol: 225.8,
		models.LabLDL:              147.3,
		models.LabHDL:              45.8,
		models.LabTriglycerides:    163.4,
		models.LabBloodSugar:       87.4,
	}, result.LabValues)
	assert.Equal(t, text, result.RawTextPreview)
}

func TestExtract_Scenarios(t *testing.T) {
	p := New(nil)

	t.Run("total cholesterol", func(t *testing.T) {
		result := p.Extract("TOTAL CHOLESTEROL - 225.8 mg/dl")
		assert.Equal(t, 225.8, result.LabValues[models.LabTotalCholesterol])
		assert.Contains(t, result.Diseases, "High Cholesterol")
	})

	t.Run("age", func(t *testing.T) {
		result := p.Extract("AGE - 56 years")
		require.NotNil(t, result.PatientDetails.Age)
		assert.Equal(t, 56, *result.PatientDetails.Age)
	})

	t.Run("normal blood sugar", func(t *testing.T) {
		result := p.Extract("Blood Sugar: 87 mg/dl")
		assert.Equal(t, 87.0, result.LabValues[models.LabBloodSugar])
		assert.Equal(t, []string{models.NoDisease}, result.Diseases)
	})

	t.Run("allergy list", func(t *testing.T) {
		result := p.Extract("Patient is allergic to peanuts, shellfish")
		assert.Equal(t, "Peanuts, Shellfish", result.Allergies)
	})

	t.Run("allergy list followed by labs", func(t *testing.T) {
		result := p.Extract("Patient is allergic to peanuts, shellfish\nBlood Sugar: 130 mg/dl")
		assert.Equal(t, "Peanuts, Shellfish", result.Allergies)
		assert.Equal(t, 130.0, result.LabValues[models.LabBloodSugar])
	})

	t.Run("misspelled disease", func(t *testing.T) {
		result := p.Extract("Patient has diabetis")
		assert.Contains(t, result.Diseases, "Diabetes")
	})

	t.Run("empty input", func(t *testing.T) {
		result := p.Extract("")
		assert.False(t, result.Success)
		assert.Equal(t, ErrInputTooShort.Error(), result.Error)
		assert.Equal(t, []string{}, result.Diseases)
		assert.Equal(t, "", result.Allergies)
		assert.True(t, result.PatientDetails.IsEmpty())
		assert.Nil(t, result.LabValues)
	})
}

func TestExtract_MinLength(t *testing.T) {
	p := New(nil)

	assert.False(t, p.Extract("   short   ").Success)
	assert.False(t, p.Extract("123456789").Success)
	assert.True(t, p.Extract("1234567890").Success)

	p = New(nil, WithMinLength(3))
	assert.True(t, p.Extract("abc").Success)
}

func TestExtract_DiseasesNeverEmpty(t *testing.T) {
	p := New(nil)
	for _, text := range []string{
		"nothing of interest here",
		"hdl - 45.8 mg/dl",
		strings.Repeat("lorem ipsum ", 20),
	} {
		result := p.Extract(text)
		require.True(t, result.Success)
		assert.NotEmpty(t, result.Diseases, text)
	}
}

func TestExtract_Union(t *testing.T) {
	p := New(nil)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"text and labs agree", "known diabetic, fasting blood sugar - 140 mg/dl", []string{"Diabetes"}},
		{"text first then labs", "patient has diabetis and a total cholesterol - 250 mg/dl", []string{"Diabetes", "High Cholesterol"}},
		{"blood pressure", "hypertension noted. bp: 150/95", []string{"Hypertension"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Extract(tt.text).Diseases)
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	p := New(nil)
	text := readSample(t) + "\nallergies: penicillin\nbp: 150/95\nhba1c: 7.1%"

	first := p.Extract(text)
	second := p.Extract(text)
	assert.Equal(t, first, second)
}

func TestExtract_Preview(t *testing.T) {
	text := strings.Repeat("é", 600)

	result := New(nil).Extract(text)
	assert.Equal(t, strings.Repeat("é", 500)+"...", result.RawTextPreview)

	result = New(nil, WithPreviewLength(20)).Extract(text)
	assert.Equal(t, strings.Repeat("é", 20)+"...", result.RawTextPreview)
}

func TestExtract_MatcherConfig(t *testing.T) {
	p := New(nil, WithMatcherConfig(disease.MatcherConfig{Threshold: 95}))
	assert.Equal(t, []string{models.NoDisease}, p.Extract("Patient has diabetis").Diseases)
}

func TestExtract_RecoversFromPanic(t *testing.T) {
	var buf bytes.Buffer
	p := New(nil, WithLogger(zerolog.New(&buf)))
	p.matcher = nil

	result := p.Extract("patient has diabetis")

	assert.False(t, result.Success)
	assert.True(t, strings.HasPrefix(result.Error, "error processing text: "), result.Error)
	assert.Equal(t, []string{}, result.Diseases)
	assert.Contains(t, buf.String(), `"stage":"diseases"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestExtractDocument(t *testing.T) {
	var buf bytes.Buffer
	p := New(nil, WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	doc := models.Document{ID: "doc-1", Source: "testdata/sample_report.txt", Content: readSample(t)}
	result := p.ExtractDocument(doc)

	assert.Equal(t, p.Extract(doc.Content), result)
	assert.Contains(t, buf.String(), `"document_id":"doc-1"`)
}

func TestSupportedDiseases(t *testing.T) {
	diseases := New(nil).SupportedDiseases()
	require.Len(t, diseases, 14)
	assert.Equal(t, "Diabetes", diseases[0])
	assert.Equal(t, "Osteoporosis", diseases[13])
	assert.NotContains(t, diseases, models.NoDisease)
}

func TestInternalError(t *testing.T) {
	cause := errors.New("boom")
	err := recovered("labs", cause)
	assert.Equal(t, "error processing text: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	err = recovered("labs", "not an error")
	assert.Equal(t, "error processing text: not an error", err.Error())
}
