// Package cli provides the command line interface over the ingest core.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ingest/internal/config"
	"github.com/temirov/ingest/internal/ingest"
	"github.com/temirov/ingest/internal/tokenizer"
	"github.com/temirov/ingest/internal/types"
	"github.com/temirov/ingest/internal/utils"
)

const (
	outputFlagName     = "output"
	includeFlagName    = "include"
	excludeFlagName    = "exclude"
	noIgnoreFlagName   = "no-ignore"
	maxSizeFlagName    = "max-size"
	includeBinaryFlag  = "include-binary"
	tokensFlagName     = "tokens"
	modelFlagName      = "model"
	copyFlagName       = "copy"
	configFlagName     = "config"
	globalInitFlagName = "global"
	forceInitFlagName  = "force"

	versionTemplate      = "ingest version: {{.Version}}\n"
	defaultPath          = "."
	defaultOutputPath    = "digest.txt"
	defaultTokenModel    = "gpt-4o"
	rootUse              = "ingest [path]"
	rootShortDescription = "serialize a directory tree and its file contents into one text artifact"
	rootLongDescription  = `ingest selects files under a root using include/exclude patterns plus layered
.gitignore/.ignore rules, then writes a single text artifact holding the
rendered directory tree followed by every selected file's content.
Use --include/--exclude to filter, --max-size to cap file sizes, and
--no-ignore to bypass ignore files.`
	rootUsageExample = `  # Ingest the current directory into digest.txt
  ingest

  # Only markdown files, excluding the vendor tree
  ingest --include '*.md' --exclude vendor -o docs.txt .`

	initUse              = "init"
	initShortDescription = "write a default configuration file"

	outputFlagDescription        = "output artifact path"
	includeFlagDescription       = "include path pattern (repeatable)"
	excludeFlagDescription       = "exclude path pattern (repeatable)"
	noIgnoreFlagDescription      = "do not honor .gitignore/.ignore files"
	maxSizeFlagDescription       = "maximum file size in bytes (0 disables the limit)"
	includeBinaryFlagDescription = "include files classified as binary"
	tokensFlagDescription        = "estimate artifact token count"
	modelFlagDescription         = "tokenizer model used for token estimation"
	copyFlagDescription          = "copy the finished artifact to the clipboard"
	configFlagDescription        = "explicit configuration file path"
	globalInitFlagDescription    = "write the configuration to the global directory"
	forceInitFlagDescription     = "overwrite an existing configuration file"

	emptySelectionAdvice  = "no files matched; consider loosening --include/--exclude or ignore rules"
	summaryLineFormat     = "Wrote %s (%d files, %d lines, %s, ~%d tokens via %s)"
	summaryNoTokensFormat = "Wrote %s (%d files, %d lines, %s)"
	clipboardCopiedNotice = "Artifact copied to clipboard."
)

// clipboardWriteAll is swapped in tests to avoid touching the system clipboard.
var clipboardWriteAll = clipboard.WriteAll

// Execute runs the ingest application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// ingestOptions stores the flag values of the root command.
type ingestOptions struct {
	outputPath         string
	includePatterns    []string
	excludePatterns    []string
	disableIgnoreFiles bool
	maxFileSizeBytes   int64
	includeBinaryFiles bool
	tokensEnabled      bool
	tokenModel         string
	copyToClipboard    bool
	configFilePath     string
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var options ingestOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Version:      utils.GetApplicationVersion(),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			inputPath := defaultPath
			if len(arguments) == 1 {
				inputPath = arguments[0]
			}
			return runIngest(command, inputPath, options)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)

	rootCommand.Flags().StringVarP(&options.outputPath, outputFlagName, "o", "", outputFlagDescription)
	rootCommand.Flags().StringArrayVar(&options.includePatterns, includeFlagName, nil, includeFlagDescription)
	rootCommand.Flags().StringArrayVarP(&options.excludePatterns, excludeFlagName, "e", nil, excludeFlagDescription)
	rootCommand.Flags().BoolVar(&options.disableIgnoreFiles, noIgnoreFlagName, false, noIgnoreFlagDescription)
	rootCommand.Flags().Int64Var(&options.maxFileSizeBytes, maxSizeFlagName, 0, maxSizeFlagDescription)
	rootCommand.Flags().BoolVar(&options.includeBinaryFiles, includeBinaryFlag, false, includeBinaryFlagDescription)
	rootCommand.Flags().BoolVar(&options.tokensEnabled, tokensFlagName, true, tokensFlagDescription)
	rootCommand.Flags().StringVar(&options.tokenModel, modelFlagName, defaultTokenModel, modelFlagDescription)
	rootCommand.Flags().BoolVar(&options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	rootCommand.Flags().StringVar(&options.configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(createInitCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createInitCommand returns the init subcommand writing a default configuration file.
func createInitCommand() *cobra.Command {
	var globalTarget bool
	var forceOverwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			writtenPath, initializeError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: forceOverwrite})
			if initializeError != nil {
				return initializeError
			}
			fmt.Fprintf(command.OutOrStdout(), "Configuration written to %s\n", writtenPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&globalTarget, globalInitFlagName, false, globalInitFlagDescription)
	initCommand.Flags().BoolVar(&forceOverwrite, forceInitFlagName, false, forceInitFlagDescription)
	return initCommand
}

// runIngest merges application configuration with flags, builds the run
// configuration, executes the run, and reports the outcome.
func runIngest(command *cobra.Command, inputPath string, options ingestOptions) error {
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: options.configFilePath})
	if loadError != nil {
		return loadError
	}
	effective := applyConfigurationDefaults(command, options, applicationConfiguration.Ingest)

	logger, loggerError := utils.NewApplicationLogger()
	if loggerError != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	defer logger.Sync()

	var tokenCounter tokenizer.Counter
	if effective.tokensEnabled {
		tokenCounter, _ = tokenizer.NewCounter(effective.tokenModel)
	}

	runConfiguration := types.NewIngestConfig(
		inputPath,
		effective.outputPath,
		effective.includePatterns,
		effective.excludePatterns,
		!effective.disableIgnoreFiles,
		effective.maxFileSizeBytes,
		!effective.includeBinaryFiles,
	)

	result, runError := ingest.Run(runConfiguration, tokenCounter, logger)
	if runError != nil {
		if errors.Is(runError, types.ErrEmptySelection) {
			return fmt.Errorf("%w\n%s", runError, emptySelectionAdvice)
		}
		return runError
	}

	printSummary(command, result)

	if effective.copyToClipboard {
		if copyError := copyArtifact(result.OutputPath); copyError != nil {
			logger.Warn("clipboard copy failed", zap.Error(copyError))
		} else {
			fmt.Fprintln(command.OutOrStdout(), clipboardCopiedNotice)
		}
	}
	return nil
}

// applyConfigurationDefaults overlays configuration-file defaults onto flag
// values the user left untouched.
func applyConfigurationDefaults(command *cobra.Command, options ingestOptions, defaults config.IngestConfiguration) ingestOptions {
	effective := options
	if effective.outputPath == "" {
		effective.outputPath = defaults.Output
	}
	if effective.outputPath == "" {
		effective.outputPath = defaultOutputPath
	}
	if len(effective.includePatterns) == 0 {
		effective.includePatterns = defaults.Include
	}
	if len(effective.excludePatterns) == 0 {
		effective.excludePatterns = defaults.Exclude
	}
	if !command.Flags().Changed(noIgnoreFlagName) && defaults.RespectIgnoreFiles != nil {
		effective.disableIgnoreFiles = !*defaults.RespectIgnoreFiles
	}
	if !command.Flags().Changed(maxSizeFlagName) && defaults.MaxFileSizeBytes != nil {
		effective.maxFileSizeBytes = *defaults.MaxFileSizeBytes
	}
	if !command.Flags().Changed(includeBinaryFlag) && defaults.SkipBinaryFiles != nil {
		effective.includeBinaryFiles = !*defaults.SkipBinaryFiles
	}
	if !command.Flags().Changed(tokensFlagName) && defaults.Tokens.Enabled != nil {
		effective.tokensEnabled = *defaults.Tokens.Enabled
	}
	if !command.Flags().Changed(modelFlagName) && defaults.Tokens.Model != "" {
		effective.tokenModel = defaults.Tokens.Model
	}
	if !command.Flags().Changed(copyFlagName) && defaults.Clipboard != nil {
		effective.copyToClipboard = *defaults.Clipboard
	}
	return effective
}

// printSummary writes the run summary line, colorized when stdout is a terminal.
func printSummary(command *cobra.Command, result types.IngestResult) {
	totalLines := 0
	for _, lineCount := range result.FileLineCounts {
		totalLines += lineCount
	}
	var summaryLine string
	if result.TokenCount > 0 {
		summaryLine = fmt.Sprintf(summaryLineFormat, result.OutputPath, len(result.Files), totalLines, utils.FormatFileSize(artifactSize(result.OutputPath)), result.TokenCount, result.TokenizerName)
	} else {
		summaryLine = fmt.Sprintf(summaryNoTokensFormat, result.OutputPath, len(result.Files), totalLines, utils.FormatFileSize(artifactSize(result.OutputPath)))
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		summaryLine = color.New(color.FgGreen).Sprint(summaryLine)
	}
	fmt.Fprintln(command.OutOrStdout(), summaryLine)
}

// artifactSize returns the written artifact's size, or zero when unreadable.
func artifactSize(outputPath string) int64 {
	info, statError := os.Stat(outputPath)
	if statError != nil {
		return 0
	}
	return info.Size()
}

// copyArtifact places the artifact's content on the system clipboard.
func copyArtifact(outputPath string) error {
	content, readError := os.ReadFile(outputPath)
	if readError != nil {
		return readError
	}
	return clipboardWriteAll(string(content))
}
