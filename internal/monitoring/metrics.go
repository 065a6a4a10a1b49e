package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Métriques Prometheus du service Combat
var (
	CombatSessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "combat_sessions_started_total",
			Help: "Total number of combat sessions started",
		},
	)

	CombatSessionsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "combat_sessions_ended_total",
			Help: "Total number of combat sessions ended, by result",
		},
		[]string{"result"},
	)

	ActiveCombatSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "combat_active_sessions",
			Help: "Number of combat sessions currently active",
		},
	)

	CombatActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "combat_actions_total",
			Help: "Total number of combat actions executed, by type",
		},
		[]string{"action_type"},
	)

	CombatActionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "combat_action_duration_seconds",
			Help:    "Duration of combat action resolution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action_type"},
	)

	CombatDamageDealt = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "combat_damage_dealt",
			Help:    "Damage dealt per combat log entry, by damage type",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"damage_type"},
	)

	EffectErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "combat_effect_errors_total",
			Help: "Total number of recoverable effect anomalies, by reason",
		},
		[]string{"reason"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// Metrics structure pour gérer les métriques
type Metrics struct {
	registry *prometheus.Registry
}

// NewMetrics crée une nouvelle instance de metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	// Enregistrer les métriques
	registry.MustRegister(CombatSessionsStarted)
	registry.MustRegister(CombatSessionsEnded)
	registry.MustRegister(ActiveCombatSessions)
	registry.MustRegister(CombatActionsTotal)
	registry.MustRegister(CombatActionDuration)
	registry.MustRegister(CombatDamageDealt)
	registry.MustRegister(EffectErrorsTotal)
	registry.MustRegister(HTTPRequestsTotal)
	registry.MustRegister(HTTPRequestDuration)

	logrus.Info("Prometheus metrics initialized")

	return &Metrics{
		registry: registry,
	}
}

// Handler retourne le handler Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware Prometheus pour instrumenter les requêtes HTTP
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Traiter la requête
		c.Next()

		// Mesurer et enregistrer les métriques
		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()

		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(statusCode),
		).Inc()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}
