package poller

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the polling loops. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	PollsTotal       *prometheus.CounterVec
	FetchErrorsTotal *prometheus.CounterVec
	PollDuration     prometheus.Histogram
	ActiveAlert      prometheus.Gauge
	SettingsSyncs    *prometheus.CounterVec
}

// NewMetrics registers and returns poller metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridbanner_polls_total",
			Help: "Completed alert poll ticks by outcome.",
		}, []string{"result"}),
		FetchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridbanner_fetch_errors_total",
			Help: "Failed fetch attempts by error kind.",
		}, []string{"kind"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridbanner_poll_duration_seconds",
			Help:    "Duration of one poll tick including the fetch.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 11), // 10ms .. ~10s
		}),
		ActiveAlert: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridbanner_active_alert",
			Help: "1 while an alert is being presented, 0 otherwise.",
		}),
		SettingsSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridbanner_settings_syncs_total",
			Help: "Settings sync attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.PollsTotal,
		m.FetchErrorsTotal,
		m.PollDuration,
		m.ActiveAlert,
		m.SettingsSyncs,
	)
	return m
}

func (m *Metrics) observePoll(result string, seconds float64) {
	if m == nil {
		return
	}
	m.PollsTotal.WithLabelValues(result).Inc()
	m.PollDuration.Observe(seconds)
}

func (m *Metrics) observeFetchError(kind string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) setActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.ActiveAlert.Set(1)
	} else {
		m.ActiveAlert.Set(0)
	}
}

func (m *Metrics) observeSettingsSync(result string) {
	if m == nil {
		return
	}
	m.SettingsSyncs.WithLabelValues(result).Inc()
}
