// Package metrics содержит счётчики Prometheus, которыми ядро отмечает поглощённые
// сбои хранилища и отклонённый пользовательский ввод.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "salary_tracker"

// Причины, по которым операция репозитория деградировала или была отклонена.
const (
	ReasonStoreError = "store_error"
	ReasonMalformed  = "malformed"
	ReasonWriteError = "write_error"
	ReasonRefused    = "refused"
)

// Metrics — набор счётчиков на отдельном реестре.
type Metrics struct {
	registry         *prometheus.Registry
	StorageFallbacks *prometheus.CounterVec
	LedgerRejections *prometheus.CounterVec
}

// New создаёт счётчики и регистрирует их в новом реестре.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StorageFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_fallbacks_total",
			Help:      "Storage reads and writes that degraded to an empty or default value.",
		}, []string{"key_kind", "reason"}),
		LedgerRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_rejections_total",
			Help:      "User input rejected by validation before persistence.",
		}, []string{"operation"}),
	}
	m.registry.MustRegister(m.StorageFallbacks, m.LedgerRejections)
	return m
}

// Fallback отмечает, что операция над ключом вида keyKind деградировала по причине reason.
func (m *Metrics) Fallback(keyKind, reason string) {
	if m == nil {
		return
	}
	m.StorageFallbacks.WithLabelValues(keyKind, reason).Inc()
}

// Rejected отмечает отклонённый ввод в операции.
func (m *Metrics) Rejected(operation string) {
	if m == nil {
		return
	}
	m.LedgerRejections.WithLabelValues(operation).Inc()
}

// WriteText выводит текущие значения в текстовом формате экспозиции Prometheus.
func (m *Metrics) WriteText(w io.Writer) error {
	const op = "metrics.WriteText"
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
