package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	DaysProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inverter_insight_days_processed_total",
		Help: "Calendar days of telemetry processed",
	})

	DeviceDaysProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inverter_insight_device_days_processed_total",
		Help: "Device-days analyzed",
	})

	QualityFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inverter_insight_quality_failures_total",
		Help: "Device-days that failed quality gating, by reason",
	}, []string{"reason"})

	FitErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inverter_insight_fit_errors_total",
		Help: "Device-days where the quadratic fit was undefined",
	})

	GeneratedWattHours = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inverter_insight_generated_watt_hours_total",
		Help: "Total generated energy in Whr",
	})

	ExceedanceWattHours = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inverter_insight_exceedance_watt_hours_total",
		Help: "Total energy measured above the ceiling in Whr",
	})

	ShavedWattHours = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inverter_insight_shaved_watt_hours_total",
		Help: "Total energy estimated shaved by clipping in Whr",
	})
)

// Push sends all registered metrics to a Pushgateway. A batch process has
// no scrape endpoint, so metrics are pushed once at the end of a run.
func Push(gatewayURL, job string) error {
	return push.New(gatewayURL, job).Gatherer(prometheus.DefaultGatherer).Push()
}
