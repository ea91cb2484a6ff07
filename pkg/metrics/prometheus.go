package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aeos_in_notion"

// PrometheusRecorder implements the Recorder interface using Prometheus metrics.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	notionRequests  *prometheus.CounterVec
	notionDuration  *prometheus.HistogramVec
	queueWaitTime   prometheus.Histogram
	ticksTotal      *prometheus.CounterVec
	tasksTotal      *prometheus.CounterVec
	commandsTotal   *prometheus.CounterVec
	commandDuration prometheus.Histogram
	textgenRequests *prometheus.CounterVec
	textgenTokens   *prometheus.CounterVec
	textgenDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder on its own registry, which also carries
// the Go runtime and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		notionRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notion_requests_total",
				Help:      "Total number of Notion API requests by method, endpoint and status code",
			},
			[]string{"method", "endpoint", "code"},
		),
		notionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "notion_request_duration_seconds",
				Help:      "Duration of Notion API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		queueWaitTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "limiter_wait_duration_seconds",
				Help:      "Time spent queued behind the Notion request limiter",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
		ticksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_ticks_total",
				Help:      "Poll ticks by outcome",
			},
			[]string{"outcome"},
		),
		tasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Finished task executions by final status",
			},
			[]string{"status"},
		),
		commandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Executed to-do commands by status",
			},
			[]string{"status"},
		),
		commandDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Duration of executed to-do commands in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		textgenRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "textgen_requests_total",
				Help:      "Text generation requests by provider, model and status",
			},
			[]string{"provider", "model", "status"},
		),
		textgenTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "textgen_tokens_total",
				Help:      "Tokens sent to and received from text generation providers",
			},
			[]string{"provider", "model", "type"},
		),
		textgenDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "textgen_request_duration_seconds",
				Help:      "Duration of text generation requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "model"},
		),
	}
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// ObserveNotionRequest implements Recorder. A zero status code means the request never got a response.
func (p *PrometheusRecorder) ObserveNotionRequest(method, endpoint string, statusCode int, duration time.Duration) {
	code := "none"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	p.notionRequests.WithLabelValues(method, endpoint, code).Inc()
	p.notionDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// ObserveQueueWait implements Recorder.
func (p *PrometheusRecorder) ObserveQueueWait(duration time.Duration) {
	p.queueWaitTime.Observe(duration.Seconds())
}

// ObserveTick implements Recorder.
func (p *PrometheusRecorder) ObserveTick(outcome string) {
	p.ticksTotal.WithLabelValues(outcome).Inc()
}

// ObserveTask implements Recorder.
func (p *PrometheusRecorder) ObserveTask(status string) {
	p.tasksTotal.WithLabelValues(status).Inc()
}

// ObserveCommand implements Recorder.
func (p *PrometheusRecorder) ObserveCommand(success bool, duration time.Duration) {
	p.commandsTotal.WithLabelValues(statusLabel(success)).Inc()
	p.commandDuration.Observe(duration.Seconds())
}

// ObserveTextGen implements Recorder. Tokens are only counted for successful requests.
func (p *PrometheusRecorder) ObserveTextGen(provider, model string, promptTokens, completionTokens int, success bool, duration time.Duration) {
	p.textgenRequests.WithLabelValues(provider, model, statusLabel(success)).Inc()
	if success {
		p.textgenTokens.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
		p.textgenTokens.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
	p.textgenDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
