package processor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/medscan/pkg/processor"
)

func TestProcessor_Normalize(t *testing.T) {
	p := processor.New()

	tests := []struct {
		name      string
		text      string
		wantOrig  string
		wantLower string
	}{
		{
			name:      "empty",
			text:      "",
			wantOrig:  "",
			wantLower: "",
		},
		{
			name:      "collapses spaces but keeps lines",
			text:      "  NAME  -\tMr. Amarasena  \r\nAGE -   56 years \r\n",
			wantOrig:  "NAME - Mr. Amarasena\nAGE - 56 years",
			wantLower: "name - mr. amarasena\nage - 56 years",
		},
		{
			name:      "compatibility characters",
			text:      "ＨｂＡ1c：７.２%",
			wantOrig:  "HbA1c:7.2%",
			wantLower: "hba1c:7.2%",
		},
		{
			name:      "invalid utf8 dropped",
			text:      "Glucose\xff 110 mg",
			wantOrig:  "Glucose 110 mg",
			wantLower: "glucose 110 mg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Normalize(tt.text)
			assert.Equal(t, tt.wantOrig, got.Original)
			assert.Equal(t, tt.wantLower, got.Lower)
		})
	}
}

func TestProcessor_FlattenLineBreaks(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{FlattenLineBreaks: true})

	got := p.Normalize("Line one\n\nLine two")
	assert.Equal(t, "Line one  Line two", got.Original)
}

func TestProcessor_SkipUnicodeNormalization(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{SkipUnicodeNormalization: true})

	got := p.Normalize("ｆｉｓｈ")
	assert.Equal(t, "ｆｉｓｈ", got.Original)
}
