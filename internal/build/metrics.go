package build

import (
	"sync"
	"time"
)

// BuildMetrics tracks the outcome of a batch run
type BuildMetrics struct {
	TotalEmails      int64
	RenderedEmails   int64
	FailedEmails     int64
	SkippedEmails    int64
	ArtifactsWritten int64
	AverageDuration  time.Duration
	TotalDuration    time.Duration
	mutex            sync.RWMutex
}

// NewBuildMetrics creates a new build metrics tracker
func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{}
}

// RecordEmail records the result of processing one email
func (bm *BuildMetrics) RecordEmail(result EmailResult) {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	bm.TotalEmails++
	bm.TotalDuration += result.Duration
	bm.ArtifactsWritten += int64(len(result.Artifacts))

	switch {
	case result.Skipped:
		bm.SkippedEmails++
	case len(result.Failures) > 0:
		bm.FailedEmails++
	default:
		bm.RenderedEmails++
	}

	bm.AverageDuration = bm.TotalDuration / time.Duration(bm.TotalEmails)
}

// GetSnapshot returns a snapshot of current metrics
func (bm *BuildMetrics) GetSnapshot() BuildMetrics {
	bm.mutex.RLock()
	defer bm.mutex.RUnlock()
	return BuildMetrics{
		TotalEmails:      bm.TotalEmails,
		RenderedEmails:   bm.RenderedEmails,
		FailedEmails:     bm.FailedEmails,
		SkippedEmails:    bm.SkippedEmails,
		ArtifactsWritten: bm.ArtifactsWritten,
		AverageDuration:  bm.AverageDuration,
		TotalDuration:    bm.TotalDuration,
	}
}

// Reset resets all metrics
func (bm *BuildMetrics) Reset() {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	bm.TotalEmails = 0
	bm.RenderedEmails = 0
	bm.FailedEmails = 0
	bm.SkippedEmails = 0
	bm.ArtifactsWritten = 0
	bm.AverageDuration = 0
	bm.TotalDuration = 0
}

// GetSuccessRate returns the share of emails rendered without failure as a
// percentage
func (bm *BuildMetrics) GetSuccessRate() float64 {
	bm.mutex.RLock()
	defer bm.mutex.RUnlock()

	if bm.TotalEmails == 0 {
		return 0.0
	}

	return float64(bm.RenderedEmails) / float64(bm.TotalEmails) * 100.0
}
