package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/dumpfiles/internal/utils"
)

// InitTarget selects which configuration file init writes.
type InitTarget string

const (
	// InitTargetLocal writes ./.dumpfiles.yaml in the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes ~/.dumpfiles/config.yaml.
	InitTargetGlobal InitTarget = "global"

	configurationHeader        = "# dumpfiles configuration\n"
	configurationFileMode      = 0o600
	configurationDirectoryMode = 0o755
)

// InitOptions controls configuration initialization. An empty Target means local and an empty
// WorkingDirectory means the process working directory.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// RenderDefaultConfiguration returns the built-in defaults as a YAML document.
func RenderDefaultConfiguration() ([]byte, error) {
	encoded, err := yaml.Marshal(DefaultApplicationConfiguration())
	if err != nil {
		return nil, fmt.Errorf("encode default configuration: %w", err)
	}
	return append([]byte(configurationHeader), encoded...), nil
}

// InitializeConfiguration writes the default configuration and returns the written path.
// An existing file is only replaced when Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, resolveError := initDestination(options)
	if resolveError != nil {
		return "", resolveError
	}

	_, statError := os.Stat(destinationPath)
	switch {
	case statError == nil && !options.Force:
		return "", fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", destinationPath)
	case statError != nil && !errors.Is(statError, fs.ErrNotExist):
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, statError)
	}

	if mkdirError := os.MkdirAll(filepath.Dir(destinationPath), configurationDirectoryMode); mkdirError != nil {
		return "", fmt.Errorf("create configuration directory for %s: %w", destinationPath, mkdirError)
	}
	rendered, renderError := RenderDefaultConfiguration()
	if renderError != nil {
		return "", renderError
	}
	if writeError := os.WriteFile(destinationPath, rendered, configurationFileMode); writeError != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, writeError)
	}
	return destinationPath, nil
}

func initDestination(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			currentDirectory, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = currentDirectory
		}
		return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName), nil
	default:
		return "", fmt.Errorf("unsupported init target %q", options.Target)
	}
}
