package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openmc_cache_hits_total",
		Help: "Total number of cache reads that returned a valid entry",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openmc_cache_misses_total",
		Help: "Total number of cache reads that found no valid entry",
	})
	cacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openmc_cache_evictions_total",
		Help: "Total number of cache entries removed because they were expired or corrupt",
	}, []string{"reason"})
	cacheWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openmc_cache_write_failures_total",
		Help: "Total number of cache writes that failed and were dropped",
	})
)
