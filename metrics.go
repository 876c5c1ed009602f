package ews

import "github.com/prometheus/client_golang/prometheus"

// defines prometheus metrics
var (
	promDecodedObjects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ews_objects_decoded_total",
		Help: "total number of service objects decoded, by kind",
	}, []string{"kind"})

	promSkippedElements = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ews_elements_skipped_total",
		Help: "total number of unknown elements skipped while decoding",
	})

	promUnknownObjects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ews_objects_unrecognized_total",
		Help: "total number of unrecognized objects skipped in collections",
	})

	promRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ews_requests_total",
		Help: "total number of requests sent, by operation and result",
	}, []string{"operation", "result"})
)

// PromCollectors exposes the prometheus collectors of the package. Callers
// register them on their own registry.
var PromCollectors = []prometheus.Collector{
	promDecodedObjects,
	promSkippedElements,
	promUnknownObjects,
	promRequests,
}
