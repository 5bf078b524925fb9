package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeInstagram()
	c.normalizeAudD()
	c.normalizePoller()
	c.normalizeProcessor()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeInstagram() {
	c.Instagram.Username = strings.TrimSpace(c.Instagram.Username)
	c.Instagram.SessionToken = strings.TrimSpace(c.Instagram.SessionToken)
	if c.Instagram.SessionToken == "" {
		if value, ok := os.LookupEnv("INSTAGRAM_SESSION_TOKEN"); ok {
			c.Instagram.SessionToken = strings.TrimSpace(value)
		}
	}
	if c.Instagram.Username == "" {
		if value, ok := os.LookupEnv("INSTAGRAM_USERNAME"); ok {
			c.Instagram.Username = strings.TrimSpace(value)
		}
	}
	c.Instagram.BaseURL = strings.TrimRight(strings.TrimSpace(c.Instagram.BaseURL), "/")
	if c.Instagram.BaseURL == "" {
		c.Instagram.BaseURL = strings.TrimRight(defaultInstagramBaseURL, "/")
	}
	if strings.TrimSpace(c.Instagram.UserAgent) == "" {
		c.Instagram.UserAgent = defaultInstagramUserAgent
	}
}

func (c *Config) normalizeAudD() {
	c.AudD.APIToken = strings.TrimSpace(c.AudD.APIToken)
	if c.AudD.APIToken == "" {
		if value, ok := os.LookupEnv("AUDD_API_TOKEN"); ok {
			c.AudD.APIToken = strings.TrimSpace(value)
		}
	}
	c.AudD.BaseURL = strings.TrimSpace(c.AudD.BaseURL)
	if c.AudD.BaseURL == "" {
		c.AudD.BaseURL = defaultAudDBaseURL
	}
	if strings.TrimSpace(c.AudD.Return) == "" {
		c.AudD.Return = defaultAudDReturn
	}
	if c.AudD.TimeoutSeconds <= 0 {
		c.AudD.TimeoutSeconds = defaultAudDTimeoutSeconds
	}
	if c.AudD.RetryAttempts <= 0 {
		c.AudD.RetryAttempts = defaultAudDRetryAttempts
	}
	if c.AudD.RetryBaseMS <= 0 {
		c.AudD.RetryBaseMS = defaultAudDRetryBaseMS
	}
	if c.AudD.RetryFactor < 1 {
		c.AudD.RetryFactor = defaultAudDRetryFactor
	}
}

func (c *Config) normalizePoller() {
	if c.Poller.MessageIntervalSeconds <= 0 {
		c.Poller.MessageIntervalSeconds = defaultMessageInterval
	}
	if c.Poller.PendingIntervalSeconds <= 0 {
		c.Poller.PendingIntervalSeconds = defaultPendingInterval
	}
	if c.Poller.GraceWindowSeconds < 0 {
		c.Poller.GraceWindowSeconds = defaultGraceWindowSeconds
	}
}

func (c *Config) normalizeProcessor() {
	if c.Processor.Workers <= 0 {
		c.Processor.Workers = defaultWorkers
	}
	if c.Processor.HistoryLimit <= 0 {
		c.Processor.HistoryLimit = defaultHistoryLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
}
