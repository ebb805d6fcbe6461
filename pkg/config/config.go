package config

type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Window   WindowConfig   `mapstructure:"window"`
	Database DatabaseConfig `mapstructure:"database"`
	Report   ReportConfig   `mapstructure:"report"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Plot     PlotConfig     `mapstructure:"plot"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AnalysisConfig struct {
	// CeilingWatts is the maximum continuous power of the inverters.
	CeilingWatts int64 `mapstructure:"ceiling_watts"`
	// CadenceSecs is the nominal seconds between telemetry updates, used
	// for gap reconstruction.
	CadenceSecs int64 `mapstructure:"cadence_secs"`
	// LowCutoffWatts excludes dawn/dusk samples from envelope fitting.
	LowCutoffWatts int64 `mapstructure:"low_cutoff_watts"`
	// CloudThresholdWatts is the below-curve margin for cloud rejection.
	CloudThresholdWatts float64 `mapstructure:"cloud_threshold_watts"`
	// MinSamples is the quality gate's minimum series length.
	MinSamples int `mapstructure:"min_samples"`
	// MinFitPoints is the "too cloudy" minimum after both rejection
	// rounds. Defaults equal to MinSamples but tunable independently.
	MinFitPoints int `mapstructure:"min_fit_points"`
	// MaxStartupWatts / MaxShutdownWatts bound the day's bracket samples.
	MaxStartupWatts  int64 `mapstructure:"max_startup_watts"`
	MaxShutdownWatts int64 `mapstructure:"max_shutdown_watts"`
	// Mode is "gated" or "forced".
	Mode string `mapstructure:"mode"`
}

type WindowConfig struct {
	StartDate string `mapstructure:"start_date"` // YYYY-MM-DD
	EndDate   string `mapstructure:"end_date"`   // YYYY-MM-DD
}

type DatabaseConfig struct {
	// Driver is postgres, mysql, or sqlite.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ReportConfig struct {
	// Detail prints one line per analyzed device-day.
	Detail bool `mapstructure:"detail"`
}

type NATSConfig struct {
	// URL enables the NATS report sink when non-empty.
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type PlotConfig struct {
	// Filter is all, good_data, not_cloudy, exceedance, shaved, or none.
	Filter string `mapstructure:"filter"`
	// FloorWattHours applies to the exceedance and shaved filters.
	FloorWattHours float64 `mapstructure:"floor_watt_hours"`
	Dir            string  `mapstructure:"dir"`
}

type MetricsConfig struct {
	// PushgatewayURL enables a metrics push at the end of the run.
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
