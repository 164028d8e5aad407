// Package metrics exposes Prometheus counters for the gate and the crop form.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeImage    = "image"
	OutcomeNone     = "none"
)

type Collector struct {
	loginAttempts   *prometheus.CounterVec
	logouts         prometheus.Counter
	cropSubmissions *prometheus.CounterVec
	backdropFetches *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agrigate_login_attempts_total",
			Help: "Login form submissions by validation outcome.",
		}, []string{"outcome"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrigate_logouts_total",
			Help: "Sessions reset through logout.",
		}),
		cropSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agrigate_crop_submissions_total",
			Help: "Crop form submissions by outcome.",
		}, []string{"outcome"}),
		backdropFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agrigate_backdrop_fetch_total",
			Help: "Backdrop image probes by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.loginAttempts,
		c.logouts,
		c.cropSubmissions,
		c.backdropFetches,
	)
	return c
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func (c *Collector) RecordLogin(accepted bool) {
	c.loginAttempts.WithLabelValues(outcome(accepted, OutcomeAccepted, OutcomeRejected)).Inc()
}

func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

func (c *Collector) RecordCropSubmission(accepted bool) {
	c.cropSubmissions.WithLabelValues(outcome(accepted, OutcomeAccepted, OutcomeRejected)).Inc()
}

// RecordBackdrop counts a probe. A failed probe is just "none": it is not an
// error as far as anyone is concerned.
func (c *Collector) RecordBackdrop(available bool) {
	c.backdropFetches.WithLabelValues(outcome(available, OutcomeImage, OutcomeNone)).Inc()
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
