package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CraigKelly/consensus/config"
)

// startupParams is the state shared by every sub command
type startupParams struct {
	cfgFile string
	verbose bool
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package globals so tests can run commands side by side.
func newRootCmd() *cobra.Command {
	sp := &startupParams{}

	rootCmd := &cobra.Command{
		Use:   "consensus",
		Short: "Cultural Consensus Theory by MCMC",
		Long: `consensus infers each informant's competence and the consensus answer
to each item from a binary response table. Among other features:

  - A Gibbs sampler for the consensus answers
  - An adaptive Metropolis sampler for competence
  - Gelman-Rubin R-hat and effective sample size diagnostics
  - A majority vote comparison
`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&sp.cfgFile, "config", "c", "", "config file (default is $HOME/.consensus.yaml if it exists)")
	rootCmd.PersistentFlags().BoolVarP(&sp.verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")

	rootCmd.AddCommand(newRunCmd(sp))
	rootCmd.AddCommand(newSimulateCmd(sp))
	rootCmd.AddCommand(newConfigCmd(sp))

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logger returns a development logger when verbose, otherwise a production
// logger that only reports warnings and errors.
func (sp *startupParams) logger() (*zap.Logger, error) {
	if sp.verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}

// config loads the explicit config file, else the home directory file if
// present, else the defaults.
func (sp *startupParams) config() (*config.Config, error) {
	if sp.cfgFile != "" {
		return config.Load(sp.cfgFile)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		fn := filepath.Join(home, ".consensus.yaml")
		if _, statErr := os.Stat(fn); statErr == nil {
			cfg, err := config.Load(fn)
			if err != nil {
				return nil, errors.Wrapf(err, "Could not use %s", fn)
			}
			return cfg, nil
		}
	}

	return config.Default(), nil
}
