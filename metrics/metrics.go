package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// QuoteMetrics exposes counters/histograms for quoting flows.
// A nil *QuoteMetrics is a no-op.
type QuoteMetrics struct {
	quotesComputed *prometheus.CounterVec
	finalTotals    prometheus.Histogram
	configImports  *prometheus.CounterVec
	parses         *prometheus.CounterVec
	emails         *prometheus.CounterVec
}

func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	m := &QuoteMetrics{
		quotesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quickquote",
			Subsystem: "quotes",
			Name:      "computed_total",
			Help:      "Total quotes computed",
		}, []string{"source"}),
		finalTotals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quickquote",
			Subsystem: "quotes",
			Name:      "final_total_dollars",
			Help:      "Final quote totals in dollars",
			Buckets:   []float64{50, 100, 200, 300, 500, 750, 1000, 1500, 2500},
		}),
		configImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quickquote",
			Subsystem: "config",
			Name:      "imports_total",
			Help:      "Configuration workbook imports",
		}, []string{"source", "outcome"}),
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quickquote",
			Subsystem: "parser",
			Name:      "descriptions_total",
			Help:      "Job descriptions sent to the parser",
		}, []string{"outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quickquote",
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Quote emails sent",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.quotesComputed, m.finalTotals, m.configImports, m.parses, m.emails)
	return m
}

func (m *QuoteMetrics) ObserveQuote(source string, finalTotal float64) {
	if m == nil {
		return
	}
	m.quotesComputed.WithLabelValues(source).Inc()
	m.finalTotals.Observe(finalTotal)
}

func (m *QuoteMetrics) ObserveConfigImport(source, outcome string) {
	if m == nil {
		return
	}
	m.configImports.WithLabelValues(source, outcome).Inc()
}

func (m *QuoteMetrics) ObserveParse(outcome string) {
	if m == nil {
		return
	}
	m.parses.WithLabelValues(outcome).Inc()
}

func (m *QuoteMetrics) ObserveEmail(outcome string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(outcome).Inc()
}
