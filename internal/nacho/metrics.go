package nacho

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "nacho"

// Metrics are optional, a nil *Metrics records nothing.
type Metrics struct {
	pagesLoaded    prometheus.Counter
	pagesFlushed   prometheus.Counter
	bytesFlushed   prometheus.Counter
	rowsInserted   prometheus.Counter
	rowsScanned    prometheus.Counter
	insertsDropped prometheus.Counter
	rows           prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		pagesLoaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pager",
			Name:      "pages_loaded_total",
			Help:      "Pages allocated in the page cache, read from file when present there.",
		}),
		pagesFlushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pager",
			Name:      "pages_flushed_total",
			Help:      "Pages written back to the database file.",
		}),
		bytesFlushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pager",
			Name:      "flushed_bytes_total",
			Help:      "Bytes written back to the database file.",
		}),
		rowsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "table",
			Name:      "rows_inserted_total",
			Help:      "Rows appended to the table.",
		}),
		rowsScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "table",
			Name:      "rows_scanned_total",
			Help:      "Rows decoded by table scans.",
		}),
		insertsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "table",
			Name:      "table_full_total",
			Help:      "Inserts rejected because the table was full.",
		}),
		rows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "table",
			Name:      "rows",
			Help:      "Rows currently stored in the table.",
		}),
	}
}

func (m *Metrics) pageLoaded() {
	if m == nil {
		return
	}
	m.pagesLoaded.Inc()
}

func (m *Metrics) pageFlushed(size int) {
	if m == nil {
		return
	}
	m.pagesFlushed.Inc()
	m.bytesFlushed.Add(float64(size))
}

func (m *Metrics) rowInserted(numRows uint32) {
	if m == nil {
		return
	}
	m.rowsInserted.Inc()
	m.rows.Set(float64(numRows))
}

func (m *Metrics) rowScanned() {
	if m == nil {
		return
	}
	m.rowsScanned.Inc()
}

func (m *Metrics) tableFull() {
	if m == nil {
		return
	}
	m.insertsDropped.Inc()
}

func (m *Metrics) setRows(numRows uint32) {
	if m == nil {
		return
	}
	m.rows.Set(float64(numRows))
}
