package config

const (
	defaultStateDir       = "~/.local/share/shutter"
	defaultScreenshotsDir = "~/.local/share/shutter/screenshots"
	defaultLogDir         = "~/.local/share/shutter/logs"

	defaultCaptureQuality        = 80
	defaultCaptureTimeoutSeconds = 30
	defaultCaptureScriptDelayMS  = 2000

	defaultQueueMaxSize        = 50
	defaultQueueDrainBatchSize = 5
	defaultQueueItemDelayMS    = 500

	defaultCleanupDays = 30

	defaultQueuePollInterval    = 10
	defaultCleanupIntervalHours = 24

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

// Limits enforced during validation.
const (
	MinCaptureQuality = 1
	MaxCaptureQuality = 100
	MinQueueSize      = 1
	MaxQueueSize      = 200
	MinCleanupDays    = 1
	MaxCleanupDays    = 365
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:       defaultStateDir,
			ScreenshotsDir: defaultScreenshotsDir,
			LogDir:         defaultLogDir,
		},
		Capture: Capture{
			Quality:        defaultCaptureQuality,
			TimeoutSeconds: defaultCaptureTimeoutSeconds,
			ScriptDelayMS:  defaultCaptureScriptDelayMS,
		},
		Queue: Queue{
			MaxSize:        defaultQueueMaxSize,
			DrainBatchSize: defaultQueueDrainBatchSize,
			ItemDelayMS:    defaultQueueItemDelayMS,
		},
		Retention: Retention{
			CleanupDays: defaultCleanupDays,
		},
		Workflow: Workflow{
			QueuePollInterval:    defaultQueuePollInterval,
			CleanupIntervalHours: defaultCleanupIntervalHours,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
