package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// StatSource is satisfied by *pgxpool.Pool.
type StatSource interface {
	Stat() *pgxpool.Stat
}

// PoolStatsCollector exports pgxpool statistics.
type PoolStatsCollector struct {
	pool StatSource

	acquired *prometheus.Desc
	idle     *prometheus.Desc
	total    *prometheus.Desc
	max      *prometheus.Desc
	acquires *prometheus.Desc
}

// NewPoolStatsCollector builds a collector labelled with service.
func NewPoolStatsCollector(pool StatSource, service string) *PoolStatsCollector {
	constLabels := prometheus.Labels{"service": service}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(name, help, nil, constLabels)
	}
	return &PoolStatsCollector{
		pool:     pool,
		acquired: desc("db_pool_acquired_connections", "Number of currently acquired connections"),
		idle:     desc("db_pool_idle_connections", "Number of currently idle connections"),
		total:    desc("db_pool_total_connections", "Total number of connections in the pool"),
		max:      desc("db_pool_max_connections", "Maximum number of connections allowed"),
		acquires: desc("db_pool_acquire_count_total", "Total number of connection acquires"),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquires
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount()))
}
