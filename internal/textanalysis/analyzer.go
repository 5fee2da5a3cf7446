package textanalysis

import (
	"time"

	"go.uber.org/zap"
)

// Analysis is what the analyzer recovers from a caption or page body.
// Topic is empty and Deadline nil when nothing could be recovered.
type Analysis struct {
	Topic    string
	Language Language
	Deadline *time.Time
}

// Analyzer composes the event-name, language and deadline heuristics
type Analyzer struct {
	classifier *Classifier
	dates      DateParser
	now        func() time.Time
	log        *zap.Logger
}

// NewAnalyzer creates an analyzer. A nil dates parser uses FreeformDateParser
// and a nil clock uses time.Now.
func NewAnalyzer(classifier *Classifier, dates DateParser, now func() time.Time, log *zap.Logger) *Analyzer {
	if classifier == nil {
		classifier = NewClassifier(nil, log)
	}
	if dates == nil {
		dates = FreeformDateParser{}
	}
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		classifier: classifier,
		dates:      dates,
		now:        now,
		log:        log,
	}
}

// Analyze extracts topic, language and deadline from text
func (a *Analyzer) Analyze(text string) Analysis {
	result := Analysis{
		Topic:    ExtractEventName(text),
		Language: a.classifier.Classify(text),
		Deadline: ExtractDeadline(a.dates, text, a.now()),
	}

	a.log.Debug("Text analyzed",
		zap.String("topic", result.Topic),
		zap.String("language", string(result.Language)),
		zap.Bool("has_deadline", result.Deadline != nil))

	return result
}
