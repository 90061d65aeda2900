// Package metrics reports matching statistics, as text and JSON for the CLI
// and as a Prometheus collector for long-running hosts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/standardbeagle/termshield/internal/types"
)

// StatsSource is anything that exposes cumulative matching stats, such as
// *orchestrator.Orchestrator.
type StatsSource interface {
	Stats() types.Stats
}

// StatsCollector exports a StatsSource as Prometheus counters. Values are
// read at scrape time, so the collector holds no state of its own.
type StatsCollector struct {
	src StatsSource

	documents   *prometheus.Desc
	chunked     *prometheus.Desc
	words       *prometheus.Desc
	matches     *prometheus.Desc
	cacheHits   *prometheus.Desc
	cacheMisses *prometheus.Desc
	elapsed     *prometheus.Desc
}

// NewStatsCollector returns a collector naming its metrics under namespace.
func NewStatsCollector(namespace string, src StatsSource) *StatsCollector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &StatsCollector{
		src:         src,
		documents:   desc("documents_total", "Documents matched."),
		chunked:     desc("chunked_documents_total", "Documents split into chunks."),
		words:       desc("words_total", "Whitespace-separated words scanned."),
		matches:     desc("matches_total", "Matches returned, by match kind.", "kind"),
		cacheHits:   desc("result_cache_hits_total", "Whole-document result cache hits."),
		cacheMisses: desc("result_cache_misses_total", "Whole-document result cache misses."),
		elapsed:     desc("match_seconds_total", "Time spent matching."),
	}
}

func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.documents
	ch <- c.chunked
	ch <- c.words
	ch <- c.matches
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.elapsed
}

func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}
	counter(c.documents, float64(s.Documents))
	counter(c.chunked, float64(s.ChunkedDocuments))
	counter(c.words, float64(s.TotalWords))
	for _, k := range types.MatchKinds() {
		counter(c.matches, float64(s.MatchesByKind[k]), k.String())
	}
	counter(c.cacheHits, float64(s.CacheHits))
	counter(c.cacheMisses, float64(s.CacheMisses))
	counter(c.elapsed, s.Elapsed.Seconds())
}
