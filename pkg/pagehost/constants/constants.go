// Package constants defines shared constants, well-known keys, and environment
// variable names used throughout the pagehost framework.
package constants

import (
	"os"
	"time"
)

// Development is the environment variable value for development mode.
const Development = "DEV"

// Environment variable names read by the framework.
const (
	EnvironmentEnvVar = "ENVIRONMENT"      // DEV enables development mode
	ConfigPathEnvVar  = "PAGEHOST_CONFIG"  // Path to a TOML configuration file
	DebugEnvVar       = "PAGEHOST_DEBUG"   // Any value raises the internal log level to debug
	EnvPrefix         = "PAGEHOST"         // Prefix for envconfig overrides
	PlatformEnvVar    = "PLATFORM"         // Device platform identifier
	LocaleEnvVar      = "PAGEHOST_LOCALE"  // Overrides the configured locale
	MetricsAddrEnvVar = "PAGEHOST_METRICS" // Listen address for the demo metrics endpoint
)

// IsDevMode returns true if running in development mode (ENVIRONMENT=DEV).
func IsDevMode() bool {
	return os.Getenv(EnvironmentEnvVar) == Development
}

// Well-known keys in the persistent settings store.
const (
	SuspendMarkerKey     = "Suspend_Data"
	ExecutionStateKey    = "Execution_State"
	FrameStateKeyPrefix  = "Frame_State_"
	DefaultFrameName     = "main"
	DefaultSettingsTable = "settings"
)

// Container registration names resolved by the framework.
const (
	// NavigationServiceParameterName is the named constructor argument that
	// carries a frame's navigation service into its view-models.
	NavigationServiceParameterName = "navigationService"
	LoggerName                     = "logger"
	SettingsName                   = "settings"
	NavigationServicesName         = "navigationServices"
)

// Default timing values.
const (
	DefaultStopTimeout  = 5 * time.Second
	DefaultStartTimeout = 30 * time.Second
	DefaultCacheSize    = 5
	PowerShortPressMax  = 2 * time.Second
	PowerCoolDown       = 1 * time.Second
	PowerButtonCode     = 116
)
