package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour/styles"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including file accessibility and attachment backend credentials. The
// configPath argument specifies the config file location to validate (empty
// string skips config file check). This calls Validate() first for basic
// structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateAttachments(),
		criterio.Run("render.theme", c.Render.Theme, knownTheme),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Database.MaxOpenConns > 1 && c.Database.BusyTimeout == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Database",
			Item:     "busy_timeout",
			Message:  "multiple connections without a busy timeout will fail on concurrent writes",
		})
	}

	if c.Attachments.Backend == BackendFilesystem && c.Attachments.Container != DefaultConfig().Attachments.Container {
		warnings = append(warnings, ValidationWarning{
			Category: "Attachments",
			Item:     "container",
			Message:  "container is ignored by the filesystem backend",
		})
	}

	if c.Annotator.Name == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Annotator",
			Item:     "name",
			Message:  "annotator name is empty; reports will not be attributed",
		})
	}

	return warnings
}

// validateFileAccess checks the config file, data directory and attachment directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("attachments.dir", c.AttachmentsDir(), isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func (c *Config) validateAttachments() error {
	if c.Attachments.Backend != BackendAzure {
		return nil
	}

	var errs criterio.FieldErrorsBuilder
	if c.Attachments.Container == "" {
		errs = errs.Append("attachments.container", fmt.Errorf("required for the azure backend"))
	}
	if c.AzureConnectionString() == "" {
		errs = errs.Append("attachments.connection_string_env", fmt.Errorf("environment variable %s is not set", c.Attachments.ConnectionStringEnv))
	}
	return errs.ToError()
}

func knownTheme(theme string) error {
	if _, ok := styles.DefaultStyles[theme]; !ok {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return nil
}
