package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/dumpfiles/internal/types"
	"github.com/temirov/dumpfiles/internal/utils"
)

const (
	// DefaultOutputPath is the artifact written when no output is configured.
	DefaultOutputPath = "output.txt"
	// DefaultIgnorePattern is the explicit pattern used when none is configured.
	DefaultIgnorePattern = ".git*"
	// DefaultLogLevel is the console log level.
	DefaultLogLevel = "info"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds defaults for a dump run. Unset pointer fields mean "not configured".
type ApplicationConfiguration struct {
	Output      string               `mapstructure:"output" yaml:"output"`
	Ignore      []string             `mapstructure:"ignore" yaml:"ignore"`
	Gitignore   string               `mapstructure:"gitignore" yaml:"gitignore"`
	NoGitignore *bool                `mapstructure:"no_gitignore" yaml:"no_gitignore"`
	MatchMode   string               `mapstructure:"match_mode" yaml:"match_mode"`
	Copy        *bool                `mapstructure:"copy" yaml:"copy"`
	Logging     LoggingConfiguration `mapstructure:"logging" yaml:"logging"`
}

// LoggingConfiguration configures the application logger.
type LoggingConfiguration struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
}

// DefaultApplicationConfiguration returns the built-in defaults.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		Output:      DefaultOutputPath,
		Ignore:      []string{DefaultIgnorePattern},
		Gitignore:   utils.GitIgnoreFileName,
		NoGitignore: boolPointer(false),
		MatchMode:   types.MatchModeGlob,
		Copy:        boolPointer(false),
		Logging:     LoggingConfiguration{Level: DefaultLogLevel},
	}
}

// LoadApplicationConfiguration loads configuration from global and local files on top of the defaults.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	merged := DefaultApplicationConfiguration()

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Ignore = utils.DeduplicatePatterns(merged.Ignore)
	if validationErr := merged.Validate(); validationErr != nil {
		return ApplicationConfiguration{}, validationErr
	}
	return merged, nil
}

// Validate reports configuration values outside their allowed sets.
func (config ApplicationConfiguration) Validate() error {
	switch config.MatchMode {
	case "", types.MatchModeGlob, types.MatchModeGitignore:
	default:
		return fmt.Errorf("unsupported match mode %q: expected %s or %s", config.MatchMode, types.MatchModeGlob, types.MatchModeGitignore)
	}
	return nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath
		}
		return filepath.Join(workingDirectory, explicitPath)
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName)
}

func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Output != "" {
		result.Output = override.Output
	}
	if len(override.Ignore) > 0 {
		result.Ignore = append([]string{}, override.Ignore...)
	}
	if override.Gitignore != "" {
		result.Gitignore = override.Gitignore
	}
	if override.NoGitignore != nil {
		result.NoGitignore = cloneBool(override.NoGitignore)
	}
	if override.MatchMode != "" {
		result.MatchMode = override.MatchMode
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	result.Logging = result.Logging.merge(override.Logging)
	return result
}

func (config LoggingConfiguration) merge(override LoggingConfiguration) LoggingConfiguration {
	result := config
	if override.Level != "" {
		result.Level = override.Level
	}
	if override.File != "" {
		result.File = override.File
	}
	return result
}

// BoolValue dereferences an optional boolean, treating nil as false.
func BoolValue(value *bool) bool {
	return value != nil && *value
}

func boolPointer(value bool) *bool {
	return &value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
