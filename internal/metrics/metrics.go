package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
	"sync"
)

const (
	namespace = "btc_dashboard"
	subsystem = "alerts"
)

var (
	TicksReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ticks_received",
		Help:      "The total number of price ticks received from the stream",
	})
	StreamReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "stream_reconnects",
		Help:      "The total number of stream reconnect attempts",
	})
	CrossingsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "crossings_detected",
			Help:      "The total number of threshold crossings by direction",
		},
		[]string{"direction"},
	)
	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_sent",
			Help:      "The total number of delivered notifications by channel",
		},
		[]string{"channel"},
	)
	NotificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_failures",
			Help:      "The total number of failed notifications by channel",
		},
		[]string{"channel"},
	)
	PollErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poll_errors",
			Help:      "The total number of failed REST polls by source",
		},
		[]string{"source"},
	)
	CurrentPrice = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_price_usd",
		Help:      "The latest streamed price in USD",
	})
	ActiveThresholds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "active_thresholds",
		Help:      "The current number of active alert thresholds",
	})
)

type labelledCounter struct {
	vec   *prometheus.CounterVec
	label string
}

var (
	persistedCounters = map[string]prometheus.Counter{
		"ticks_received":    TicksReceived,
		"stream_reconnects": StreamReconnects,
	}
	persistedVecs = map[string]labelledCounter{
		"crossings_detected":    {CrossingsDetected, "direction"},
		"notifications_sent":    {NotificationsSent, "channel"},
		"notification_failures": {NotificationFailures, "channel"},
		"poll_errors":           {PollErrors, "source"},
	}

	mutex sync.Mutex
)

func init() {
	prometheus.MustRegister(TicksReceived)
	prometheus.MustRegister(StreamReconnects)
	prometheus.MustRegister(CrossingsDetected)
	prometheus.MustRegister(NotificationsSent)
	prometheus.MustRegister(NotificationFailures)
	prometheus.MustRegister(PollErrors)
	prometheus.MustRegister(CurrentPrice)
	prometheus.MustRegister(ActiveThresholds)
}

// Storage persists counter values between restarts.
type Storage interface {
	SaveMetric(metricName string, value float64) error
	GetMetric(metricName string) (float64, error)
	SaveMetricWithLabels(metricName, labelKey, labelValue string, value float64) error
	GetMetricsWithLabels(metricName string) (map[string]map[string]float64, error)
}

// LoadFromDB adds the persisted counter values to the live collectors. Call once at startup.
func LoadFromDB(db Storage) {
	mutex.Lock()
	defer mutex.Unlock()

	for name, counter := range persistedCounters {
		value, err := db.GetMetric(name)
		if err != nil {
			log.Errorf("Failed to load metric %s: %v", name, err)
			continue
		}
		counter.Add(value)
	}

	for name, lc := range persistedVecs {
		values, err := db.GetMetricsWithLabels(name)
		if err != nil {
			log.Errorf("Failed to load metric %s: %v", name, err)
			continue
		}
		for labelValue, value := range values[lc.label] {
			lc.vec.WithLabelValues(labelValue).Add(value)
		}
	}

	log.Info("Metrics loaded from database.")
}

func SaveToDB(db Storage) {
	mutex.Lock()
	defer mutex.Unlock()

	for name, counter := range persistedCounters {
		if err := db.SaveMetric(name, GetMetricValue(counter)); err != nil {
			log.Errorf("Failed to save metric %s: %v", name, err)
		}
	}

	for name, lc := range persistedVecs {
		metricChan := make(chan prometheus.Metric, 16)
		go func() {
			lc.vec.Collect(metricChan)
			close(metricChan)
		}()

		for metric := range metricChan {
			metricProto := &dto.Metric{}
			if err := metric.Write(metricProto); err != nil {
				log.Errorf("Failed to read %s metric: %v", name, err)
				continue
			}
			var labelValue string
			for _, label := range metricProto.Label {
				if label.GetName() == lc.label {
					labelValue = label.GetValue()
				}
			}
			if err := db.SaveMetricWithLabels(name, lc.label, labelValue, metricProto.Counter.GetValue()); err != nil {
				log.Errorf("Failed to save metric %s[%s]: %v", name, labelValue, err)
			}
		}
	}

	log.Info("Metrics saved to database.")
}

func GetMetricValue(metric prometheus.Collector) float64 {
	var metricValue float64
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	m, ok := <-metricChan
	if !ok {
		return 0
	}

	metricProto := &dto.Metric{}
	if err := m.Write(metricProto); err != nil {
		log.Errorf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		metricValue = metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		metricValue = metricProto.Gauge.GetValue()
	}
	return metricValue
}
