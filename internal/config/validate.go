package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateInstagram(); err != nil {
		return err
	}
	if err := c.validateAudD(); err != nil {
		return err
	}
	if err := c.validatePoller(); err != nil {
		return err
	}
	if err := c.validateProcessor(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateInstagram() error {
	if c.Instagram.SessionToken == "" {
		return errors.New("instagram.session_token is required (set it in the config file or INSTAGRAM_SESSION_TOKEN)")
	}
	if c.Instagram.BaseURL == "" {
		return errors.New("instagram.base_url must not be empty")
	}
	return nil
}

func (c *Config) validateAudD() error {
	if c.AudD.APIToken == "" {
		return errors.New("audd.api_token is required (set it in the config file or AUDD_API_TOKEN)")
	}
	if c.AudD.RetryAttempts < 1 {
		return fmt.Errorf("audd.retry_attempts must be at least 1, got %d", c.AudD.RetryAttempts)
	}
	return nil
}

func (c *Config) validatePoller() error {
	if c.Poller.MessageIntervalSeconds < 1 {
		return fmt.Errorf("poller.message_interval_seconds must be at least 1, got %d", c.Poller.MessageIntervalSeconds)
	}
	if c.Poller.PendingIntervalSeconds < 1 {
		return fmt.Errorf("poller.pending_interval_seconds must be at least 1, got %d", c.Poller.PendingIntervalSeconds)
	}
	return nil
}

func (c *Config) validateProcessor() error {
	if c.Processor.Workers < 1 || c.Processor.Workers > 16 {
		return fmt.Errorf("processor.workers must be between 1 and 16, got %d", c.Processor.Workers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
