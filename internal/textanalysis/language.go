package textanalysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"go.uber.org/zap"
)

// Language is the presentation language of a caption or page
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageThai    Language = "thai"
	LanguageUnknown Language = "unknown"
)

// DetectFunc returns the ISO 639-1 code of the text's language
type DetectFunc func(text string) (string, error)

var errEmptyText = errors.New("empty text")

// DetectWhatlang detects the language with whatlanggo. Its trigram model has
// no random state, so repeated runs over the same text agree.
func DetectWhatlang(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errEmptyText
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", fmt.Errorf("language not detected")
	}
	return code, nil
}

// Classifier maps detector output onto Language
type Classifier struct {
	detect DetectFunc
	log    *zap.Logger
}

// NewClassifier creates a classifier; a nil detect uses whatlanggo
func NewClassifier(detect DetectFunc, log *zap.Logger) *Classifier {
	if detect == nil {
		detect = DetectWhatlang
	}
	return &Classifier{detect: detect, log: log}
}

// Classify never fails: detector errors and panics yield LanguageUnknown
func (c *Classifier) Classify(text string) (lang Language) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("Language detector panicked", zap.Any("panic", r))
			lang = LanguageUnknown
		}
	}()

	code, err := c.detect(text)
	if err != nil {
		c.log.Debug("Language detection failed", zap.Error(err))
		return LanguageUnknown
	}

	switch code {
	case "en":
		return LanguageEnglish
	case "th":
		return LanguageThai
	default:
		return LanguageUnknown
	}
}
