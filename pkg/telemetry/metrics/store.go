package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RowCounter counts the rows of a table. The SQLite store implements it.
type RowCounter interface {
	CountRows(ctx context.Context, table, where string, args ...any) (int64, error)
}

// StoreCollector exports the row count of the analysis tables. Counts are
// read from the store on every scrape.
//
// Metrics:
//   - sweeper_store_rows: Rows per table
//   - sweeper_store_scrape_errors_total: Failed counts
type StoreCollector struct {
	counter RowCounter
	tables  []string
	timeout time.Duration
	logger  *slog.Logger

	rows         *prometheus.Desc
	scrapeErrors prometheus.Counter
}

// NewStoreCollector creates a collector counting tables through counter.
func NewStoreCollector(namespace string, counter RowCounter, tables []string) *StoreCollector {
	return &StoreCollector{
		counter: counter,
		tables:  tables,
		timeout: 5 * time.Second,
		logger:  slog.Default().With("component", "metrics.store"),
		rows: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "rows"),
			"Number of rows in an analysis table",
			[]string{"table"}, nil,
		),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "scrape_errors_total",
			Help:      "Total number of failed table counts",
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rows
	c.scrapeErrors.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	for _, table := range c.tables {
		n, err := c.counter.CountRows(ctx, table, "")
		if err != nil {
			c.scrapeErrors.Inc()
			c.logger.Warn("failed to count rows", "table", table, "error", err)
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.rows, prometheus.GaugeValue, float64(n), table)
	}
	c.scrapeErrors.Collect(ch)
}
