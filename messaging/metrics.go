package messaging

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type metricSource interface {
	Registry() *prometheus.Registry
	RequestLog(ctx context.Context, rpc string, fields ...zap.Field)
}

func registerMetrics(reg *prometheus.Registry, s *service) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "fcm",
		Subsystem: "messaging",
		Name:      "send_count",
		Help:      "total count of sent messages",
	}, func() float64 {
		return float64(s.metrics.sendCount.Load())
	}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "fcm",
		Subsystem: "messaging",
		Name:      "topic_tokens",
		Help:      "total count of tokens passed to topic management",
	}, func() float64 {
		return float64(s.metrics.topicTokens.Load())
	}))
	s.metrics.duration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "fcm",
		Subsystem: "messaging",
		Name:      "duration_seconds",
		Help:      "duration of messaging requests",
		Objectives: map[float64]float64{
			0.5:  0.5,
			0.85: 0.01,
			0.95: 0.0005,
			0.99: 0.0001,
		},
	}, []string{"method"})
	reg.MustRegister(s.metrics.duration)
}
