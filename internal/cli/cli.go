// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dumpfiles/internal/commands"
	"github.com/temirov/dumpfiles/internal/config"
	"github.com/temirov/dumpfiles/internal/services/clipboard"
	"github.com/temirov/dumpfiles/internal/types"
	"github.com/temirov/dumpfiles/internal/utils"
)

const (
	outputFlagName      = "output"
	outputFlagShorthand = "o"
	ignoreFlagName      = "ignore"
	ignoreFlagShorthand = "i"
	gitignoreFlagName   = "gitignore"
	gitignoreShorthand  = "g"
	noGitignoreFlagName = "no-gitignore"
	matchModeFlagName   = "match-mode"
	configFlagName      = "config"
	logLevelFlagName    = "log-level"
	logFileFlagName     = "log-file"
	copyFlagName        = "copy"
	versionFlagName     = "version"
	globalFlagName      = "global"
	forceFlagName       = "force"

	rootUse              = "dumpfiles DIRECTORY"
	rootShortDescription = "dump a directory tree and its file contents into one text file"
	rootLongDescription  = `dumpfiles walks DIRECTORY and writes a single text artifact: a <tree> listing of every
kept entry followed by the contents of every file, nested in blocks named after each directory and file.
Entries are excluded by --ignore patterns and by the patterns of an ignore file (.gitignore by default).
Settings are read from ~/.dumpfiles/config.yaml and ./.dumpfiles.yaml before flags are applied.`
	rootUsageExample = `  # Dump the current project into output.txt
  dumpfiles .

  # Write elsewhere, skip node_modules and ignore .gitignore
  dumpfiles ./service -o /tmp/service.txt -i node_modules --no-gitignore

  # Use full gitignore semantics and copy the result
  dumpfiles . --match-mode gitignore --copy`

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write the default configuration to ./.dumpfiles.yaml, or to ~/.dumpfiles/config.yaml with --global.
Use --force to overwrite an existing file.`

	outputFlagDescription      = "output artifact path"
	ignoreFlagDescription      = "exclusion pattern (repeatable)"
	gitignoreFlagDescription   = "ignore file merged into the exclusion patterns; a given path is relative to the working directory, the default to DIRECTORY"
	noGitignoreFlagDescription = "do not read the ignore file"
	matchModeFlagDescription   = "pattern matching mode: glob or gitignore"
	configFlagDescription      = "configuration file path"
	logLevelFlagDescription    = "log level: debug, info, warn or error"
	logFileFlagDescription     = "also write JSON logs to this rotating file"
	copyFlagDescription        = "copy the artifact to the system clipboard"
	versionFlagDescription     = "display application version"
	globalFlagDescription      = "write the global configuration instead of the local one"
	forceFlagDescription       = "overwrite an existing configuration file"

	versionTemplate              = "dumpfiles version: %s\n"
	initCompletedTemplate        = "Configuration written to %s\n"
	errorMissingDirectoryMessage = "requires exactly one DIRECTORY argument"
	errorWorkingDirectoryFormat  = "unable to determine working directory: %w"
	errorReadArtifactFormat      = "reading artifact for clipboard: %w"
	errorCopyArtifactFormat      = "copying artifact to clipboard: %w"
)

// Dependencies are the collaborators the commands use outside the core dump.
type Dependencies struct {
	Clipboard     clipboard.Copier
	LoggerFactory func(utils.LoggerOptions) (*zap.Logger, error)
	Stdout        io.Writer
}

// rootOptions holds the root command flag values.
type rootOptions struct {
	output      string
	ignore      []string
	gitignore   string
	noGitignore bool
	matchMode   string
	configPath  string
	logLevel    string
	logFile     string
	copy        bool
	showVersion bool
}

// Execute runs the dumpfiles application.
func Execute() error {
	rootCommand := NewRootCommand(Dependencies{})
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command. Zero-valued dependencies are replaced by the system ones.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.LoggerFactory == nil {
		dependencies.LoggerFactory = utils.NewConfiguredLogger
	}
	if dependencies.Stdout == nil {
		dependencies.Stdout = os.Stdout
	}

	var options rootOptions
	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				return nil
			}
			if len(arguments) != 1 {
				return errors.New(errorMissingDirectoryMessage)
			}
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, err := fmt.Fprintf(dependencies.Stdout, versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return runDump(command, arguments[0], options, dependencies)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVarP(&options.output, outputFlagName, outputFlagShorthand, config.DefaultOutputPath, outputFlagDescription)
	flagSet.StringArrayVarP(&options.ignore, ignoreFlagName, ignoreFlagShorthand, []string{config.DefaultIgnorePattern}, ignoreFlagDescription)
	flagSet.StringVarP(&options.gitignore, gitignoreFlagName, gitignoreShorthand, utils.GitIgnoreFileName, gitignoreFlagDescription)
	registerToggleFlag(flagSet, &options.noGitignore, noGitignoreFlagName, noGitignoreFlagDescription)
	flagSet.StringVar(&options.matchMode, matchModeFlagName, types.MatchModeGlob, matchModeFlagDescription)
	flagSet.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	flagSet.StringVar(&options.logLevel, logLevelFlagName, config.DefaultLogLevel, logLevelFlagDescription)
	flagSet.StringVar(&options.logFile, logFileFlagName, "", logFileFlagDescription)
	registerToggleFlag(flagSet, &options.copy, copyFlagName, copyFlagDescription)
	flagSet.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand(dependencies))
	return rootCommand
}

// applyFlagOverrides layers explicitly set flags on top of the loaded configuration.
func applyFlagOverrides(command *cobra.Command, options rootOptions, configuration config.ApplicationConfiguration) config.ApplicationConfiguration {
	flagSet := command.Flags()
	override := config.ApplicationConfiguration{}
	if flagSet.Changed(outputFlagName) {
		override.Output = options.output
	}
	if flagSet.Changed(ignoreFlagName) {
		override.Ignore = options.ignore
	}
	if flagSet.Changed(gitignoreFlagName) {
		override.Gitignore = options.gitignore
	}
	if flagSet.Changed(noGitignoreFlagName) {
		noGitignore := options.noGitignore
		override.NoGitignore = &noGitignore
	}
	if flagSet.Changed(matchModeFlagName) {
		override.MatchMode = options.matchMode
	}
	if flagSet.Changed(copyFlagName) {
		copyArtifact := options.copy
		override.Copy = &copyArtifact
	}
	if flagSet.Changed(logLevelFlagName) {
		override.Logging.Level = options.logLevel
	}
	if flagSet.Changed(logFileFlagName) {
		override.Logging.File = options.logFile
	}
	return configuration.Merge(override)
}

func runDump(command *cobra.Command, directory string, options rootOptions, dependencies Dependencies) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
	}
	loadedConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if loadError != nil {
		return loadError
	}
	configuration := applyFlagOverrides(command, options, loadedConfiguration)
	if validationError := configuration.Validate(); validationError != nil {
		return validationError
	}

	logger, loggerError := dependencies.LoggerFactory(utils.LoggerOptions{
		Level:   configuration.Logging.Level,
		LogFile: configuration.Logging.File,
	})
	if loggerError != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputPath := configuration.Output
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(workingDirectory, outputPath)
	}
	ignoreFilePath := configuration.Gitignore
	if command.Flags().Changed(gitignoreFlagName) && !filepath.IsAbs(ignoreFilePath) {
		ignoreFilePath = filepath.Join(workingDirectory, ignoreFilePath)
	}
	if config.BoolValue(configuration.NoGitignore) {
		ignoreFilePath = ""
	}

	if _, dumpError := commands.WriteDirectoryContents(commands.DumpOptions{
		Root:               directory,
		OutputPath:         outputPath,
		IgnorePatterns:     configuration.Ignore,
		IgnoreFilePath:     ignoreFilePath,
		IgnoreFileRequired: command.Flags().Changed(gitignoreFlagName),
		MatchMode:          configuration.MatchMode,
		Logger:             logger,
	}); dumpError != nil {
		return dumpError
	}

	if config.BoolValue(configuration.Copy) {
		artifact, readError := os.ReadFile(outputPath)
		if readError != nil {
			return fmt.Errorf(errorReadArtifactFormat, readError)
		}
		if copyError := dependencies.Clipboard.Copy(string(artifact)); copyError != nil {
			return fmt.Errorf(errorCopyArtifactFormat, copyError)
		}
		logger.Info("Copied artifact to clipboard", zap.String("output", outputPath))
	}
	return nil
}

func createInitCommand(dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			_, err := fmt.Fprintf(dependencies.Stdout, initCompletedTemplate, writtenPath)
			return err
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
