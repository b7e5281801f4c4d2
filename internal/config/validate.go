package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if c.Engine.TimeoutSeconds < 0 {
		return errors.New("engine.timeout_seconds must be >= 0")
	}
	switch c.Convert.OnExisting {
	case OnExistingRename, OnExistingSkip, OnExistingOverwrite, OnExistingFail:
	default:
		return fmt.Errorf("convert.on_existing: unsupported value %q (want rename, skip, overwrite or fail)", c.Convert.OnExisting)
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.ProfilesFile == "" {
		return errors.New("paths.profiles_file must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.ProfilesFile == c.Paths.SelectionFile {
		return errors.New("paths.selection_file must differ from paths.profiles_file")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
