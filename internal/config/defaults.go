package config

const (
	defaultDataDir             = "~/.local/share/luffe"
	defaultStagingDir          = "~/.local/share/luffe/staging"
	defaultLogDir              = "~/.local/share/luffe/logs"
	defaultAPIBind             = "127.0.0.1:7311"
	defaultInstagramBaseURL    = "https://i.instagram.com/api/v1"
	defaultInstagramUserAgent  = "Instagram 275.0.0.27.98 Android"
	defaultAudDBaseURL         = "https://api.audd.io/"
	defaultAudDReturn          = "apple_music,spotify"
	defaultAudDTimeoutSeconds  = 30
	defaultAudDRetryAttempts   = 3
	defaultAudDRetryBaseMS     = 500
	defaultAudDRetryFactor     = 2.0
	defaultMessageInterval     = 1
	defaultPendingInterval     = 30
	defaultGraceWindowSeconds  = 120
	defaultWorkers             = 1
	defaultHistoryLimit        = 10
	defaultNtfyRequestTimeout  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Instagram: Instagram{
			BaseURL:   defaultInstagramBaseURL,
			UserAgent: defaultInstagramUserAgent,
		},
		AudD: AudD{
			BaseURL:        defaultAudDBaseURL,
			Return:         defaultAudDReturn,
			TimeoutSeconds: defaultAudDTimeoutSeconds,
			RetryAttempts:  defaultAudDRetryAttempts,
			RetryBaseMS:    defaultAudDRetryBaseMS,
			RetryFactor:    defaultAudDRetryFactor,
		},
		Poller: Poller{
			MessageIntervalSeconds: defaultMessageInterval,
			PendingIntervalSeconds: defaultPendingInterval,
			GraceWindowSeconds:     defaultGraceWindowSeconds,
		},
		Processor: Processor{
			Workers:      defaultWorkers,
			HistoryLimit: defaultHistoryLimit,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			Startup:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
