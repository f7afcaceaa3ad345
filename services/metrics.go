package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"citation-hand/domainerrors"
)

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citation_operations_total",
			Help: "Anzahl der Zitationsoperationen nach Operation und Ergebnis.",
		},
		[]string{"operation", "outcome"},
	)
	bibliographiesExported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bibliographies_exported_total",
			Help: "Anzahl der nach S3 exportierten Literaturverzeichnisse.",
		},
	)
)

func init() {
	prometheus.MustRegister(operationsTotal, bibliographiesExported)
}

// observe zählt eine Operation. Fehler werden mit ihrem Domänencode erfasst.
func observe(operation string, outcome Outcome, err error) {
	label := string(outcome)
	if err != nil {
		label = string(domainerrors.CodeOf(err))
	}
	operationsTotal.WithLabelValues(operation, label).Inc()
}
