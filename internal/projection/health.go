package projection

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

type Status int32

const (
	Healthy Status = iota
	Degraded
	Unhealthy
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "Healthy"
	case Degraded:
		return "Degraded"
	case Unhealthy:
		return "Unhealthy"
	default:
		return "Unknown"
	}
}

type HealthReporter interface {
	Set(status Status)
	Status() Status
}

// Health is the status of the projection as seen by the orchestration tooling.
type Health struct {
	status atomic.Int32
	gauge  prometheus.Gauge
}

func NewHealth(registry prometheus.Registerer) (*Health, error) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "projection",
		Name:      "health_status",
		Help:      "Health of the projection: 0 healthy, 1 degraded, 2 unhealthy",
	})

	err := registry.Register(gauge)
	if err != nil {
		return nil, err
	}

	return &Health{gauge: gauge}, nil
}

func (h *Health) Set(status Status) {
	h.status.Store(int32(status))
	h.gauge.Set(float64(status))
}

func (h *Health) Status() Status {
	return Status(h.status.Load())
}

// ServeHTTP answers 200 only when healthy.
func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	status := h.Status()

	if status == Healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	_, _ = w.Write([]byte(status.String()))
}
