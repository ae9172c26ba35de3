package metrics

import "time"

// OutcomeLabel enumerates command outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeNoop    OutcomeLabel = "noop"
	OutcomeAborted OutcomeLabel = "aborted"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for scanning and rewriting documentation.
type Recorder interface {
	IncFilesScanned(n int)
	IncFilesMatched()
	IncReference(kind string)
	AddLinesRewritten(n int)
	ObserveCommandDuration(command string, d time.Duration)
	IncCommandOutcome(command string, outcome OutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncFilesScanned(int)                          {}
func (NoopRecorder) IncFilesMatched()                             {}
func (NoopRecorder) IncReference(string)                          {}
func (NoopRecorder) AddLinesRewritten(int)                        {}
func (NoopRecorder) ObserveCommandDuration(string, time.Duration) {}
func (NoopRecorder) IncCommandOutcome(string, OutcomeLabel)       {}
