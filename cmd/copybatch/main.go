package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/copybatch/internal/cliconfig"
	"github.com/bft-labs/copybatch/internal/soak"
	"github.com/bft-labs/copybatch/pkg/log"
)

const helpDescription = `
Soak-test the copybatch engine: build randomized object graphs with shared
substructure and cycles, push them through a batcher under every policy
combination, and verify the aliasing and consistency guarantees hold.

Highlights:
  - Reproducible runs via --seed; identical options give identical graphs.
  - Exercises preserve/duplicate alias policies and both consistency modes.
  - Configure via file, env (COPYBATCH_*), or flags.
Exit status is nonzero if any invariant is violated.
`

var exampleUsage = strings.TrimSpace(`
  copybatch --graphs 64 --rounds 16
  copybatch --max-items 4 --seed 42 --verbose
  copybatch --config $HOME/.copybatch/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "copybatch",
		Short:   "Verify the batched deep-copy engine against randomized object graphs",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.copybatch/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if !cfg.Verbose {
				logger = logger.Level(zerolog.InfoLevel)
			}
			logger.Info().Interface("config", cfg).Msg("configuration")

			batchCfg, err := cfg.BatchConfig()
			if err != nil {
				return err
			}

			res, err := soak.Run(soak.Options{
				Graphs: cfg.Graphs,
				Rounds: cfg.Rounds,
				Seed:   cfg.Seed,
				Batch:  batchCfg,
				Logger: log.NewZerologAdapterWithLogger(logger),
			})
			if err != nil {
				return err
			}

			logger.Info().
				Int("rounds", res.Rounds).
				Int("graphs", res.Graphs).
				Int("entries", res.Entries).
				Int("violations", res.Violations).
				Msg("soak complete")

			if res.Violations > 0 {
				return fmt.Errorf("%d invariant violations", res.Violations)
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to TOML config file")
	flags.IntVar(&cfg.Graphs, "graphs", cfg.Graphs, "random graphs deferred per round")
	flags.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "rounds, each with a fresh batcher")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "graph generator seed")
	flags.IntVar(&cfg.MaxItems, "max-items", cfg.MaxItems, "auto-flush queue threshold")
	flags.Int64Var(&cfg.MaxBytes, "max-bytes", cfg.MaxBytes, "advisory byte soft cap (0 disables)")
	flags.StringVar(&cfg.Consistency, "consistency", cfg.Consistency, "default snapshot mode: at-access or strict")
	flags.StringVar(&cfg.Alias, "alias", cfg.Alias, "default alias policy: preserve or duplicate")
	flags.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "debug logging")

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("copybatch failed")
		os.Exit(1)
	}
}
