package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RegisterFlags declares the command-line flags. Call before pflag.Parse;
// Load binds them into viper so flags override file and env values.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.Int64("analysis.ceiling_watts", 349, "maximum continuous power output of the inverters (W)")
	flags.Int64("analysis.cadence_secs", 331, "nominal seconds between telemetry updates")
	flags.String("analysis.mode", "gated", "quality gate strictness: gated or forced")
	flags.String("window.start_date", "2006-01-01", "first date to analyze (YYYY-MM-DD)")
	flags.String("window.end_date", "9999-12-31", "last date to analyze (YYYY-MM-DD)")
	flags.String("database.driver", "sqlite", "telemetry database driver: postgres, mysql, or sqlite")
	flags.String("database.dsn", "", "telemetry database DSN")
	flags.Bool("report.detail", false, "print one line per analyzed device-day")
	flags.String("plot.filter", "none", "chart selection: all, good_data, not_cloudy, exceedance, shaved, none")
	flags.Float64("plot.floor_watt_hours", 0, "minimum Whr for the exceedance/shaved chart filters")
}

// Load reads configuration from file, environment, and flags, in rising
// precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetDefault("analysis.ceiling_watts", 349)
	viper.SetDefault("analysis.cadence_secs", 331)
	viper.SetDefault("analysis.low_cutoff_watts", 75)
	viper.SetDefault("analysis.cloud_threshold_watts", 5)
	viper.SetDefault("analysis.min_samples", 50)
	viper.SetDefault("analysis.min_fit_points", 50)
	viper.SetDefault("analysis.max_startup_watts", 20)
	viper.SetDefault("analysis.max_shutdown_watts", 0)
	viper.SetDefault("analysis.mode", "gated")
	viper.SetDefault("window.start_date", "2006-01-01")
	viper.SetDefault("window.end_date", "9999-12-31")
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("nats.subject", "inverter.insight.results")
	viper.SetDefault("plot.filter", "none")
	viper.SetDefault("plot.dir", "./plots")
	viper.SetDefault("metrics.job", "inverter-insight")
	viper.SetDefault("logging.level", "info")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without the APP_ prefix for container deploys
	viper.BindEnv("database.dsn", "DATABASE_DSN", "APP_DATABASE_DSN")
	viper.BindEnv("database.driver", "DATABASE_DRIVER", "APP_DATABASE_DRIVER")
	viper.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	viper.BindEnv("metrics.pushgateway_url", "PUSHGATEWAY_URL")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if flags != nil {
		if err := viper.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine: env vars and flags cover everything.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
