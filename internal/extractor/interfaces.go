package extractor

import "time"

// Recorder receives extraction measurements
type Recorder interface {
	ObserveExtraction(strategy string, elapsed time.Duration)
	ExtractionFailed(strategy, reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveExtraction(string, time.Duration) {}
func (nopRecorder) ExtractionFailed(string, string)         {}
