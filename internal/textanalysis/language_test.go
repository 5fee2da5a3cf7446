package textanalysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClassifier_MapsCodes(t *testing.T) {
	tests := []struct {
		code string
		want Language
	}{
		{code: "en", want: LanguageEnglish},
		{code: "th", want: LanguageThai},
		{code: "fr", want: LanguageUnknown},
		{code: "", want: LanguageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c := NewClassifier(func(string) (string, error) { return tt.code, nil }, zap.NewNop())
			assert.Equal(t, tt.want, c.Classify("anything"))
		})
	}
}

func TestClassifier_DetectorError(t *testing.T) {
	c := NewClassifier(func(string) (string, error) { return "", errors.New("no features in text") }, zap.NewNop())
	assert.Equal(t, LanguageUnknown, c.Classify("12345"))
}

func TestClassifier_DetectorPanic(t *testing.T) {
	c := NewClassifier(func(string) (string, error) { panic("detector state corrupted") }, zap.NewNop())
	assert.NotPanics(t, func() {
		assert.Equal(t, LanguageUnknown, c.Classify("text"))
	})
}

func TestClassifier_Whatlang(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	assert.Equal(t, LanguageThai, c.Classify("เปิดรับสมัครค่ายคอมพิวเตอร์สำหรับนักเรียนมัธยมปลาย"))
	assert.Equal(t, LanguageEnglish, c.Classify("The robotics workshop is open for registration until the end of the month"))
	assert.Equal(t, LanguageUnknown, c.Classify("   "))
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())
	text := "Join our hackathon this weekend"

	first := c.Classify(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Classify(text))
	}
}
