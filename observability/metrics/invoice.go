package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type InvoiceMetrics struct {
	created          prometheus.Counter
	settled          prometheus.Counter
	cancelled        prometheus.Counter
	settlementVolume *prometheus.CounterVec
	openInvoices     prometheus.Gauge
}

var (
	invoiceOnce     sync.Once
	invoiceRegistry *InvoiceMetrics
)

func Invoice() *InvoiceMetrics {
	invoiceOnce.Do(func() {
		invoiceRegistry = &InvoiceMetrics{
			created: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "invoice_created_total",
				Help: "Count of invoices recorded by the merchant.",
			}),
			settled: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "invoice_settled_total",
				Help: "Count of invoices settled by payers.",
			}),
			cancelled: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "invoice_cancelled_total",
				Help: "Count of invoices withdrawn before payment.",
			}),
			settlementVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "invoice_settlement_volume",
				Help: "Total settled amount per denom, in base units.",
			}, []string{"denom"}),
			openInvoices: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "invoice_open",
				Help: "Number of invoices currently open.",
			}),
		}
		prometheus.MustRegister(
			invoiceRegistry.created,
			invoiceRegistry.settled,
			invoiceRegistry.cancelled,
			invoiceRegistry.settlementVolume,
			invoiceRegistry.openInvoices,
		)
	})
	return invoiceRegistry
}

// RecordCreated tracks a successful AddInvoice.
func (m *InvoiceMetrics) RecordCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
	m.openInvoices.Inc()
}

// RecordSettled tracks a successful PayInvoice. The volume counter loses
// precision beyond float64 range; the ledger itself remains exact.
func (m *InvoiceMetrics) RecordSettled(denom string, amount *big.Int) {
	if m == nil {
		return
	}
	m.settled.Inc()
	m.openInvoices.Dec()
	if amount != nil && denom != "" {
		value, _ := new(big.Float).SetInt(amount).Float64()
		m.settlementVolume.WithLabelValues(denom).Add(value)
	}
}

// RecordCancelled tracks a successful CancelInvoice.
func (m *InvoiceMetrics) RecordCancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
	m.openInvoices.Dec()
}
