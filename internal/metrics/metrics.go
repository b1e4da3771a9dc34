// Package metrics exposes Prometheus counters for story navigation.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sceneplay/internal/game"
)

// Collector owns its own registry so tests and multiple servers do not
// collide on the global one.
type Collector struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	awards      prometheus.Counter
	started     prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sceneplay",
			Name:      "transitions_total",
			Help:      "Scene transitions applied, by kind.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sceneplay",
			Name:      "transitions_rejected_total",
			Help:      "Scene transitions rejected, by reason.",
		}, []string{"reason"}),
		awards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sceneplay",
			Name:      "wins_awarded_total",
			Help:      "Wins awarded on entering awarding scenes.",
		}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sceneplay",
			Name:      "playthroughs_started_total",
			Help:      "Playthroughs started.",
		}),
	}
	c.registry.MustRegister(c.transitions, c.rejected, c.awards, c.started)
	return c
}

// Observe records a successful transition. It has the shape of an engine
// observer.
func (c *Collector) Observe(t game.Transition) {
	c.transitions.WithLabelValues(string(t.Kind)).Inc()
	if t.Awarded {
		c.awards.Inc()
	}
}

// Rejected records a failed transition.
func (c *Collector) Rejected(err error) {
	c.rejected.WithLabelValues(Reason(err)).Inc()
}

// Started records a new playthrough.
func (c *Collector) Started() {
	c.started.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Reason maps an engine error to a low-cardinality label.
func Reason(err error) string {
	var (
		unknown   *game.UnknownSceneError
		invalid   *game.InvalidChoiceError
		noCheck   *game.NoCheckpointError
		missing   *game.MissingOutcomeTargetError
		noAdvance *game.NoAutoAdvanceError
		notGift   *game.NotGiftCheckError
		stale     *game.StaleActionError
	)
	switch {
	case errors.As(err, &stale):
		return "stale_action"
	case errors.As(err, &unknown):
		return "unknown_scene"
	case errors.As(err, &invalid):
		return "invalid_choice"
	case errors.As(err, &noCheck):
		return "no_checkpoint"
	case errors.As(err, &missing):
		return "missing_outcome_target"
	case errors.As(err, &noAdvance):
		return "no_auto_advance"
	case errors.As(err, &notGift):
		return "not_gift_check"
	default:
		return "other"
	}
}
