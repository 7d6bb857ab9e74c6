package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce           sync.Once
	commandRequests        *prometheus.CounterVec
	commandDuration        *prometheus.HistogramVec
	accumulateTotal        *prometheus.CounterVec
	fanoutDeliveries       *prometheus.CounterVec
	defaultDurationBuckets = prometheus.DefBuckets
)

const (
	namespaceMetrics = "shiftcash"
)

// MustRegister 初始化 Prometheus 指标并注册 Go 运行时采样器，需在应用启动阶段调用一次。
func MustRegister() {
	registerOnce.Do(func() {
		commandRequests = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "bot",
					Name:      "commands_total",
					Help:      "机器人命令的处理次数，按命令与结果状态统计。",
				},
				[]string{"command", "status"},
			),
		)
		commandDuration = registerHistogramVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespaceMetrics,
					Subsystem: "bot",
					Name:      "command_duration_seconds",
					Help:      "单条命令从接收到回复的耗时，按命令区分。",
					Buckets:   defaultDurationBuckets,
				},
				[]string{"command"},
			),
		)
		accumulateTotal = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "metrics",
					Name:      "accumulate_total",
					Help:      "成功写入的累加操作次数，按字段拆分。",
				},
				[]string{"field"},
			),
		)
		fanoutDeliveries = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "notify",
					Name:      "fanout_deliveries_total",
					Help:      "报表分发的单收件人投递次数，按结果分类。",
				},
				[]string{"result"},
			),
		)

		registerRuntimeCollectors()
	})
}

// ObserveCommand 记录一条命令的处理结果与耗时。
func ObserveCommand(command, status string, duration time.Duration) {
	if commandRequests == nil || commandDuration == nil {
		return
	}
	commandRequests.WithLabelValues(normalizeLabel(command, "unknown"), normalizeLabel(status, "unknown")).Inc()
	commandDuration.WithLabelValues(normalizeLabel(command, "unknown")).Observe(duration.Seconds())
}

// RecordAccumulate 记录一次成功的字段累加。
func RecordAccumulate(field string) {
	if accumulateTotal == nil {
		return
	}
	accumulateTotal.WithLabelValues(normalizeLabel(field, "unknown")).Inc()
}

// RecordFanoutDelivery 记录单收件人投递结果。
func RecordFanoutDelivery(result string) {
	if fanoutDeliveries == nil {
		return
	}
	fanoutDeliveries.WithLabelValues(normalizeLabel(result, "unknown")).Inc()
}

func normalizeLabel(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func registerCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		if existing := alreadyRegisteredCounterVec(err); existing != nil {
			return existing
		}
		panic(err)
	}
	return vec
}

func registerHistogramVec(vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(vec); err != nil {
		if existing := alreadyRegisteredHistogramVec(err); existing != nil {
			return existing
		}
		panic(err)
	}
	return vec
}

func registerRuntimeCollectors() {
	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		if !isAlreadyRegistered(err) {
			panic(err)
		}
	}
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		if !isAlreadyRegistered(err) {
			panic(err)
		}
	}
}

func alreadyRegisteredCounterVec(err error) *prometheus.CounterVec {
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing
		}
	}
	return nil
}

func alreadyRegisteredHistogramVec(err error) *prometheus.HistogramVec {
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
			return existing
		}
	}
	return nil
}

func isAlreadyRegistered(err error) bool {
	_, ok := err.(prometheus.AlreadyRegisteredError)
	return ok
}
