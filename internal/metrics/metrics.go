// Package metrics expone metricas Prometheus de la entrevista.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder es la interfaz que usan servicios y middlewares.
type Recorder interface {
	RecordSessionOpened()
	RecordSessionCompleted()
	RecordAnswerSaved(created bool)
	RecordHTTPStatus(statusCode int)
}

// Collector implementa Recorder sobre Prometheus.
type Collector struct {
	sessionsOpened    prometheus.Counter
	sessionsCompleted prometheus.Counter
	answersSaved      *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
}

// NewCollector crea las metricas y las registra en reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memory_assistant_sessions_opened_total",
			Help: "Sesiones de entrevista creadas.",
		}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memory_assistant_sessions_completed_total",
			Help: "Llamadas a completar sesion.",
		}),
		answersSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memory_assistant_answers_saved_total",
			Help: "Respuestas guardadas, por resultado (created|updated).",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memory_assistant_http_responses_total",
			Help: "Respuestas HTTP por codigo de estado.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.sessionsOpened,
		c.sessionsCompleted,
		c.answersSaved,
		c.httpStatus,
	)
	return c
}

func (c *Collector) RecordSessionOpened() {
	c.sessionsOpened.Inc()
}

func (c *Collector) RecordSessionCompleted() {
	c.sessionsCompleted.Inc()
}

func (c *Collector) RecordAnswerSaved(created bool) {
	result := "updated"
	if created {
		result = "created"
	}
	c.answersSaved.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler devuelve el handler de scrape para gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type nopRecorder struct{}

// Nop devuelve un Recorder que descarta todo.
func Nop() Recorder { return nopRecorder{} }

func (nopRecorder) RecordSessionOpened() {}
func (nopRecorder) RecordSessionCompleted() {}
func (nopRecorder) RecordAnswerSaved(bool) {}
func (nopRecorder) RecordHTTPStatus(int) {}
