package extractor

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/medscan/internal/models"
)

const sampleReport = `medical laboratory report
senaviratna medical centre
eheliyagoda

name - mr. amarasena
age - 56 years
date - 01/06/2020

investigation - fbs lipid profile

fasting blood sugar - 87.4 mg/dl
normal range 60 -110 mg/dl

total cholesterol - 225.8 mg/dl
elevated over 240 mg/dl

triglycerides - 163.4 mg/dl
elevated over 200mg/dl

hdl - 45.8 mg/dl
favarable over 55mg/dl
risk indicator less than 35 mg/dl

ldl - 147.3 mg/dl
elevated over 160 mg/dl`

func TestFirstMatch(t *testing.T) {
	failing := Rule[int]{
		Name:    "failing",
		Pattern: regexp.MustCompile(`value (\d+)`),
		Convert: func(g []string) (int, error) { return 0, errors.New("boom") },
	}
	tooBig := Rule[int]{
		Name:    "too-big",
		Pattern: regexp.MustCompile(`value (\d+)`),
		Convert: func(g []string) (int, error) { return strconv.Atoi(g[1]) },
		Valid:   func(v int) bool { return v < 10 },
	}
	plain := Rule[int]{
		Name:    "plain",
		Pattern: regexp.MustCompile(`value (\d)`),
		Convert: func(g []string) (int, error) { return strconv.Atoi(g[1]) },
	}

	v, ok, errs := FirstMatch("value", []Rule[int]{failing, tooBig, plain}, "value 42")
	require.True(t, ok)
	assert.Equal(t, 4, v)
	require.Len(t, errs, 1)

	var perr *PatternParseError
	require.True(t, errors.As(errs[0], &perr))
	assert.Equal(t, "value", perr.Field)
	assert.Equal(t, "failing", perr.Rule)
	assert.Equal(t, "42", perr.Capture)

	_, ok, errs = FirstMatch("value", []Rule[int]{plain}, "nothing here")
	assert.False(t, ok)
	assert.Empty(t, errs)
}

func TestFieldExtractor_SampleReport(t *testing.T) {
	details, errs := NewFieldExtractor().Extract(sampleReport)
	assert.Empty(t, errs)

	require.NotNil(t, details.Name)
	assert.Equal(t, "Mr Amarasena", *details.Name)
	require.NotNil(t, details.Age)
	assert.Equal(t, 56, *details.Age)
	assert.Nil(t, details.Gender)
	assert.Nil(t, details.HeightCM)
	assert.Nil(t, details.WeightKG)
}

func TestFieldExtractor(t *testing.T) {
	text := "patient name: john smith\nage: 45\ngender: m\nheight: 5'10\"\nweight: 180 lbs"

	details, _ := NewFieldExtractor().Extract(text)

	require.NotNil(t, details.Name)
	assert.Equal(t, "John Smith", *details.Name)
	require.NotNil(t, details.Age)
	assert.Equal(t, 45, *details.Age)
	require.NotNil(t, details.Gender)
	assert.Equal(t, models.GenderMale, *details.Gender)
	require.NotNil(t, details.HeightCM)
	assert.Equal(t, 178, *details.HeightCM)
	require.NotNil(t, details.WeightKG)
	assert.Equal(t, 82, *details.WeightKG)
}

func TestFieldExtractor_Age(t *testing.T) {
	tests := []struct {
		text string
		want *int
	}{
		{"age - 56 years", intPtr(56)},
		{"a 34 year old female", intPtr(34)},
		{"age: 150 years", nil},
		{"age: 0", nil},
		{"no demographics", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			details, _ := NewFieldExtractor().Extract(tt.text)
			assert.Equal(t, tt.want, details.Age)
		})
	}
}

func TestFieldExtractor_Gender(t *testing.T) {
	tests := []struct {
		text string
		want models.Gender
	}{
		{"gender: female", models.GenderFemale},
		{"sex: f", models.GenderFemale},
		{"sex: m/f", models.GenderOther},
		{"a 34 year old male", models.GenderMale},
		{"a 34 year old female", models.GenderFemale},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			details, _ := NewFieldExtractor().Extract(tt.text)
			require.NotNil(t, details.Gender)
			assert.Equal(t, tt.want, *details.Gender)
		})
	}
}

func TestFieldExtractor_HeightWeight(t *testing.T) {
	details, _ := NewFieldExtractor().Extract("height: 172 cm weight: 70 kg")
	require.NotNil(t, details.HeightCM)
	assert.Equal(t, 172, *details.HeightCM)
	require.NotNil(t, details.WeightKG)
	assert.Equal(t, 70, *details.WeightKG)

	details, _ = NewFieldExtractor().Extract("height: 20 cm")
	assert.Nil(t, details.HeightCM)
}

func TestFieldExtractor_NameLength(t *testing.T) {
	details, _ := NewFieldExtractor().Extract("name: al")
	assert.Nil(t, details.Name)

	details, _ = NewFieldExtractor().Extract("name: " + strings.Repeat("a", 60))
	assert.Nil(t, details.Name)
}

func TestLabExtractor_SampleReport(t *testing.T) {
	values, errs := NewLabExtractor().Extract(sampleReport)
	assert.Empty(t, errs)

	assert.Equal(t, models.LabValues{
		models.LabTotalCholesterol: 225.8,
		models.LabLDL:              147.3,
		models.LabHDL:              45.8,
		models.LabTriglycerides:    163.4,
		models.LabBloodSugar:       87.4,
	}, values)
}

func TestLabExtractor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.LabValues
	}{
		{
			name: "bp abbreviation",
			text: "bp: 145/95",
			want: models.LabValues{models.LabSystolic: 145, models.LabDiastolic: 95},
		},
		{
			name: "blood pressure with dash",
			text: "blood pressure - 120/80 mmhg",
			want: models.LabValues{models.LabSystolic: 120, models.LabDiastolic: 80},
		},
		{
			name: "hba1c percent",
			text: "hba1c: 7.2%",
			want: models.LabValues{models.LabHbA1c: 7.2},
		},
		{
			name: "a1c without unit",
			text: "a1c 6.1",
			want: models.LabValues{models.LabHbA1c: 6.1},
		},
		{
			name: "glucose with en dash",
			text: "glucose – 110 mg/dl",
			want: models.LabValues{models.LabBloodSugar: 110},
		},
		{
			name: "tg abbreviation",
			text: "tg: 180 mg/dl",
			want: models.LabValues{models.LabTriglycerides: 180},
		},
		{
			name: "hba1c without unit",
			text: "hba1c: 7.2",
			want: models.LabValues{models.LabHbA1c: 7.2},
		},
		{
			name: "vldl listed before ldl",
			text: "vldl - 40 mg/dl\nldl - 100 mg/dl",
			want: models.LabValues{models.LabLDL: 100},
		},
		{
			name: "vldl alone",
			text: "vldl - 40 mg/dl",
			want: models.LabValues{},
		},
		{
			name: "sbp is not bp",
			text: "sbp: 150/95",
			want: models.LabValues{},
		},
		{
			name: "blood pressure outside capture width",
			text: "bp: 1450/95",
			want: models.LabValues{},
		},
		{
			name: "nothing",
			text: "",
			want: models.LabValues{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := NewLabExtractor().Extract(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Mr Amarasena", TitleCase("mr amarasena"))
	assert.Equal(t, "Tree Nut", TitleCase("tree nut"))
	assert.Equal(t, "Peanuts", TitleCase("PEANUTS"))
}

func intPtr(v int) *int {
	return &v
}
