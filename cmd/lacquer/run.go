package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harwoodcs/lacquer/internal/config"
	"github.com/harwoodcs/lacquer/internal/logging"
	"github.com/harwoodcs/lacquer/internal/metrics"
	"github.com/harwoodcs/lacquer/internal/search"
	"github.com/harwoodcs/lacquer/internal/sign"
	"github.com/harwoodcs/lacquer/internal/tool"
)

// errNoFiles reports the no-match outcome: a failure, not a crash.
var errNoFiles = errors.New("no files were found for the provided input path")

type runFlags struct {
	configPath string
	envFile    string

	inputPath        string
	doSign           bool
	doNotarize       bool
	doStaple         bool
	rcodesignVersion string
	verbose          bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve artifacts and run the requested stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to a lacquer.yaml config file (optional)")
	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to a .env file with INPUT_* variables (optional)")
	cmd.Flags().StringVar(&flags.inputPath, "input-path", "", "Search paths, one glob pattern per line")
	cmd.Flags().BoolVar(&flags.doSign, "sign", false, "Sign the matched files")
	cmd.Flags().BoolVar(&flags.doNotarize, "notarize", false, "Submit the matched files for notarization")
	cmd.Flags().BoolVar(&flags.doStaple, "staple", false, "Staple notarization tickets to the matched files")
	cmd.Flags().StringVar(&flags.rcodesignVersion, "rcodesign-version", "", "rcodesign release to download")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")

	return cmd
}

func runAction(cmd *cobra.Command, flags *runFlags) error {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", flags.envFile, err)
		}
	} else {
		// Best effort; a missing default .env is fine.
		godotenv.Load(".env")
	}

	cfg, err := buildConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Verbose)

	// Credential mistakes fail before anything is downloaded or spawned.
	if err := cfg.Validate(); err != nil {
		return err
	}

	workdir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	resolver := &search.Resolver{
		FS:      osfs.New("/"),
		Workdir: workdir,
		Log:     logger,
	}

	result, err := resolver.Resolve(cfg.InputPath)
	if err != nil {
		return err
	}
	if len(result.FilesToSign) == 0 {
		logger.Error().Str("input_path", cfg.InputPath).Msg("no files matched the search paths")
		return errNoFiles
	}

	logger.Info().
		Int("files", len(result.FilesToSign)).
		Str("root", result.RootDirectory).
		Msg("resolved artifacts")

	if cfg.Sign || cfg.Notarize || cfg.Staple {
		fetcher := tool.NewFetcher(tool.DefaultCacheDir(), logger)
		exe, err := fetcher.Fetch(cmd.Context(), cfg.RcodesignVersion)
		if err != nil {
			return err
		}

		pipeline := &sign.Pipeline{
			Tool:   exe,
			Opts:   signOptions(cfg),
			Runner: sign.ExecRunner{},
			Log:    logger,
		}
		if err := pipeline.Run(cmd.Context(), result.FilesToSign); err != nil {
			return err
		}
	}

	if err := writeOutputs(cmd, result.FilesToSign); err != nil {
		return err
	}

	m := metrics.Get()
	logger.Info().
		Uint64("matched", m.FilesMatched).
		Uint64("signed", m.FilesSigned).
		Uint64("notarized", m.FilesNotarized).
		Uint64("stapled", m.FilesStapled).
		Msg("run complete")
	return nil
}

// buildConfig layers the configuration sources: config file or INPUT_*
// environment as the base, explicit flags on top.
func buildConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	var cfg *config.Config
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.FromEnv()
	}

	if cmd.Flags().Changed("input-path") {
		cfg.InputPath = flags.inputPath
	}
	if cmd.Flags().Changed("sign") {
		cfg.Sign = flags.doSign
	}
	if cmd.Flags().Changed("notarize") {
		cfg.Notarize = flags.doNotarize
	}
	if cmd.Flags().Changed("staple") {
		cfg.Staple = flags.doStaple
	}
	if cmd.Flags().Changed("rcodesign-version") {
		cfg.RcodesignVersion = flags.rcodesignVersion
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	return cfg, nil
}

// writeOutputs reports the processed files: one path per line on
// stdout, and an output-paths value for the workflow when the runner
// provides an output file.
func writeOutputs(cmd *cobra.Command, files []string) error {
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}

	outputFile := os.Getenv("GITHUB_OUTPUT")
	if outputFile == "" {
		return nil
	}

	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", outputFile, err)
	}
	defer f.Close()

	const delimiter = "__LACQUER_OUTPUT__"
	_, err = fmt.Fprintf(f, "output-paths<<%s\n%s\n%s\n", delimiter, strings.Join(files, "\n"), delimiter)
	if err != nil {
		return fmt.Errorf("writing %s: %w", outputFile, err)
	}
	return nil
}

func signOptions(cfg *config.Config) sign.Options {
	return sign.Options{
		Sign:                       cfg.Sign,
		Notarize:                   cfg.Notarize,
		Staple:                     cfg.Staple,
		SignConfigFile:             cfg.SignConfigFile,
		P12File:                    cfg.P12File,
		P12Password:                cfg.P12Password,
		P12PasswordFile:            cfg.P12PasswordFile,
		PEMSources:                 cfg.PEMSources,
		RemoteSignPublicKey:        cfg.RemoteSignPublicKey,
		RemoteSignPublicKeyPEMFile: cfg.RemoteSignPublicKeyPEMFile,
		AppStoreConnectAPIKeyFile:  cfg.AppStoreConnectAPIKeyFile,
	}
}
