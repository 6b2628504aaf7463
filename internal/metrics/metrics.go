package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	EmailsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoreach_emails_dispatched_total",
			Help: "Emails handed to a delivery provider, by result",
		},
		[]string{"result"},
	)

	Personalizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoreach_personalizations_total",
			Help: "Personalized messages produced, by source (ai or fallback)",
		},
		[]string{"source"},
	)

	CampaignSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoreach_campaign_sends_total",
			Help: "Campaign send runs, by outcome",
		},
		[]string{"outcome"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autoreach_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(EmailsDispatched)
		prometheus.MustRegister(Personalizations)
		prometheus.MustRegister(CampaignSends)
		prometheus.MustRegister(HTTPDuration)
	})
}
