package notify

import "expvar"

var (
	metricHubObservers = expvar.NewInt("hub_observers_active")
	metricHubPublished = expvar.NewInt("hub_events_published_total")
	metricHubDropped   = expvar.NewInt("hub_observers_dropped_total")
)
