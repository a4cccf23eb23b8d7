package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks pipeline outcomes. A nil *Metrics is valid and records
// nothing, which keeps tests free of registry setup.
type Metrics struct {
	storiesCreated  *prometheus.CounterVec
	chaptersCreated prometheus.Counter
	blockedPrompts  prometheus.Counter
	quotaRejected   prometheus.Counter
	generationFails prometheus.Counter
	imageFails      prometheus.Counter
}

// NewMetrics registers the pipeline counters on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		storiesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "imagibox_stories_created_total",
			Help: "Stories created, labelled by mode.",
		}, []string{"mode"}),
		chaptersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "imagibox_chapters_created_total",
			Help: "Continuation chapters created.",
		}),
		blockedPrompts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "imagibox_blocked_prompts_total",
			Help: "Prompts rejected by the content safety gate.",
		}),
		quotaRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "imagibox_quota_rejections_total",
			Help: "Generation requests rejected by the daily quota.",
		}),
		generationFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "imagibox_generation_failures_total",
			Help: "Text generation or parse failures.",
		}),
		imageFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "imagibox_image_failures_total",
			Help: "Image synthesis runs that degraded to no image.",
		}),
	}
}

func (m *Metrics) IncStoryCreated(mode string) {
	if m != nil {
		m.storiesCreated.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) IncChapterCreated() {
	if m != nil {
		m.chaptersCreated.Inc()
	}
}

func (m *Metrics) IncBlockedPrompt() {
	if m != nil {
		m.blockedPrompts.Inc()
	}
}

func (m *Metrics) IncQuotaRejected() {
	if m != nil {
		m.quotaRejected.Inc()
	}
}

func (m *Metrics) IncGenerationFailed() {
	if m != nil {
		m.generationFails.Inc()
	}
}

func (m *Metrics) IncImageFailed() {
	if m != nil {
		m.imageFails.Inc()
	}
}
