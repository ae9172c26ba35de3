package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/rsttools/internal/rst"
)

const namespace = "rsttools"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry        *prom.Registry
	filesScanned    prom.Counter
	filesMatched    prom.Counter
	references      *prom.CounterVec
	linesRewritten  prom.Counter
	commandDuration *prom.HistogramVec
	commandOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg. A nil
// registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		filesScanned: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_scanned_total",
			Help:      "Documentation files passed to the reference scanner",
		}),
		filesMatched: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_matched_total",
			Help:      "Documentation files containing at least one reference",
		}),
		references: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "references_total",
			Help:      "References located by markup kind",
		}, []string{"kind"}),
		linesRewritten: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "lines_rewritten_total",
			Help:      "Lines changed by reference rewriting",
		}),
		commandDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of a command run",
			Buckets:   prom.DefBuckets,
		}, []string{"command"}),
		commandOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "command_outcomes_total",
			Help:      "Command runs by final status",
		}, []string{"command", "outcome"}),
	}
	// Every kind is exported from the start so a zero count is distinguishable from
	// a kind missing in the textfile.
	for _, k := range rst.Kinds() {
		pr.references.WithLabelValues(k.String())
	}
	reg.MustRegister(pr.filesScanned, pr.filesMatched, pr.references, pr.linesRewritten, pr.commandDuration, pr.commandOutcome)
	return pr
}

func (p *PrometheusRecorder) IncFilesScanned(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.filesScanned.Add(float64(n))
}

func (p *PrometheusRecorder) IncFilesMatched() {
	if p == nil {
		return
	}
	p.filesMatched.Inc()
}

func (p *PrometheusRecorder) IncReference(kind string) {
	if p == nil {
		return
	}
	p.references.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) AddLinesRewritten(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.linesRewritten.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveCommandDuration(command string, d time.Duration) {
	if p == nil {
		return
	}
	p.commandDuration.WithLabelValues(command).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCommandOutcome(command string, outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.commandOutcome.WithLabelValues(command, string(outcome)).Inc()
}

// WriteTextfile writes every registered metric to path in the text exposition
// format, replacing the file atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
