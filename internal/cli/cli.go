// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jefffleurima/treesnap/internal/config"
	"github.com/jefffleurima/treesnap/internal/services/clipboard"
	"github.com/jefffleurima/treesnap/internal/snapshot"
	"github.com/jefffleurima/treesnap/internal/tokenizer"
	"github.com/jefffleurima/treesnap/internal/utils"
)

const (
	rootUse              = "treesnap"
	rootShortDescription = "write an indented project structure listing"
	rootLongDescription  = `treesnap walks the current working directory and writes an indented listing
of directories and files to ` + snapshot.OutputFileName + `.
Directories named __pycache__, migrations, venv, env, static, and media are
never descended into or listed. Use --copy to place the listing on the system
clipboard and --tokens to log its estimated token footprint.`

	printUse              = "print"
	printAlias            = "p"
	printShortDescription = "write the listing to stdout instead of a file (" + printAlias + ")"
	printLongDescription  = `Render the same indented listing the bare invocation writes to ` + snapshot.OutputFileName + `,
but stream it to stdout without touching the filesystem.`

	copyFlagName    = "copy"
	tokensFlagName  = "tokens"
	modelFlagName   = "model"
	versionFlagName = "version"

	copyFlagDescription    = "copy the listing to the system clipboard"
	tokensFlagDescription  = "log a token estimate for the listing"
	modelFlagDescription   = "tokenizer model used for the token estimate"
	versionFlagDescription = "display application version"
	versionTemplate        = "treesnap version: %s\n"

	// defaultRootPath keeps the traversal rooted at the working directory, so
	// directory lines render relative to it, starting with "./".
	defaultRootPath = "."

	snapshotWrittenMessage  = "snapshot written"
	tokenEstimateMessage    = "token estimate"
	clipboardCopiedMessage  = "listing copied to clipboard"
	workingDirectoryMessage = "unable to determine working directory: %w"
)

// snapshotOptions stores the resolved flag and configuration values for one run.
type snapshotOptions struct {
	copyToClipboard bool
	countTokens     bool
	tokenModel      string
}

// Execute runs the treesnap application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger, clipboard.NewSystemCopier())
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command. The bare invocation
// performs the snapshot write on the current working directory.
func createRootCommand(logger *zap.Logger, copier clipboard.Copier) *cobra.Command {
	var showVersion bool
	options := snapshotOptions{tokenModel: tokenizer.DefaultModel}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if applyError := applyConfigurationDefaults(command, &options); applyError != nil {
				return applyError
			}
			return runSnapshot(logger, options, copier)
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.Flags().BoolVar(&options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	rootCommand.Flags().BoolVar(&options.countTokens, tokensFlagName, false, tokensFlagDescription)
	rootCommand.Flags().StringVar(&options.tokenModel, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	rootCommand.AddCommand(createPrintCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createPrintCommand returns the print subcommand.
func createPrintCommand() *cobra.Command {
	return &cobra.Command{
		Use:     printUse,
		Aliases: []string{printAlias},
		Short:   printShortDescription,
		Long:    printLongDescription,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			_, renderError := snapshot.Render(defaultRootPath, command.OutOrStdout())
			return renderError
		},
	}
}

// applyConfigurationDefaults fills options from layered configuration files
// for every flag the user did not set explicitly.
func applyConfigurationDefaults(command *cobra.Command, options *snapshotOptions) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryMessage, workingDirectoryError)
	}
	configuration, loadError := config.Load(config.LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		return loadError
	}
	if !command.Flags().Changed(copyFlagName) && configuration.Clipboard != nil {
		options.copyToClipboard = *configuration.Clipboard
	}
	if !command.Flags().Changed(tokensFlagName) && configuration.Tokens.Enabled != nil {
		options.countTokens = *configuration.Tokens.Enabled
	}
	if !command.Flags().Changed(modelFlagName) && configuration.Tokens.Model != "" {
		options.tokenModel = configuration.Tokens.Model
	}
	return nil
}

// runSnapshot performs the snapshot write and the optional clipboard and
// token-estimate follow-ups.
func runSnapshot(logger *zap.Logger, options snapshotOptions, copier clipboard.Copier) error {
	var documentBuffer *bytes.Buffer
	writeOptions := snapshot.Options{}
	if options.copyToClipboard || options.countTokens {
		documentBuffer = &bytes.Buffer{}
		writeOptions.Mirror = documentBuffer
	}

	summary, writeError := snapshot.Write(defaultRootPath, writeOptions)
	if writeError != nil {
		return writeError
	}
	logger.Info(snapshotWrittenMessage,
		zap.String("output", snapshot.OutputFileName),
		zap.Int("directories", summary.Directories),
		zap.Int("files", summary.Files),
		zap.String("totalSize", utils.FormatFileSize(summary.Bytes)),
	)

	if options.countTokens {
		counter, resolvedModel, counterError := tokenizer.NewCounter(options.tokenModel)
		if counterError != nil {
			return counterError
		}
		countResult, countError := tokenizer.CountBytes(counter, documentBuffer.Bytes())
		if countError != nil {
			return countError
		}
		if countResult.Counted {
			logger.Info(tokenEstimateMessage,
				zap.Int("tokens", countResult.Tokens),
				zap.String("model", resolvedModel),
			)
		}
	}

	if options.copyToClipboard {
		if copyError := copier.Copy(documentBuffer.String()); copyError != nil {
			return copyError
		}
		logger.Info(clipboardCopiedMessage)
	}

	return nil
}
