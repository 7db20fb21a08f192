package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/consensus/config"
	"github.com/CraigKelly/consensus/diagnostics"
	"github.com/CraigKelly/consensus/model"
	"github.com/CraigKelly/consensus/report"
	"github.com/CraigKelly/consensus/sampler"
	"github.com/CraigKelly/consensus/summary"
)

// runFlags are the command line overrides for the config file
type runFlags struct {
	dataFile   string
	draws      int
	chains     int
	tune       int
	seed       int64
	hdiProb    float64
	noPlot     bool
	bins       int
	trace      string
	sequential bool
}

func newRunCmd(sp *startupParams) *cobra.Command {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fit the consensus model to a response table and report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sp.config()
			if err != nil {
				return err
			}
			if err := rf.apply(cmd, cfg); err != nil {
				return err
			}

			logger, err := sp.logger()
			if err != nil {
				return errors.Wrap(err, "Could not create logger")
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			x, err := model.NewResponsesFromFile(model.CSVReader{}, rf.dataFile)
			if err != nil {
				return err
			}

			_, err = fitAndReport(ctx, cmd.OutOrStdout(), logger, cfg, x)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&rf.dataFile, "data", "d", "", "CSV response table: id column then one 0/1 column per item")
	f.IntVar(&rf.draws, "draws", config.DefaultDraws, "Retained draws per chain")
	f.IntVar(&rf.chains, "chains", config.DefaultChains, "Number of independent chains")
	f.IntVar(&rf.tune, "tune", config.DefaultTune, "Tuning iterations per chain (discarded)")
	f.Int64VarP(&rf.seed, "seed", "r", config.DefaultSeed, "Base random seed")
	f.Float64Var(&rf.hdiProb, "hdi-prob", config.DefaultHDIProb, "Probability mass of the highest density intervals")
	f.BoolVar(&rf.noPlot, "no-plot", false, "Skip the text density plots")
	f.IntVar(&rf.bins, "bins", config.DefaultPlotBins, "Bins per density plot")
	f.StringVarP(&rf.trace, "trace", "t", "", "Write the pooled draws to this CSV file")
	f.BoolVar(&rf.sequential, "sequential", false, "Run chains one after another instead of concurrently")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// apply copies every flag the user actually set over the loaded config
func (rf *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("draws") {
		cfg.Sampling.Draws = rf.draws
	}
	if f.Changed("chains") {
		cfg.Sampling.Chains = rf.chains
	}
	if f.Changed("tune") {
		cfg.Sampling.Tune = rf.tune
	}
	if f.Changed("seed") {
		cfg.Sampling.Seed = rf.seed
	}
	if f.Changed("sequential") {
		cfg.Sampling.Parallel = !rf.sequential
	}
	if f.Changed("hdi-prob") {
		cfg.Report.HDIProb = rf.hdiProb
	}
	if f.Changed("no-plot") {
		cfg.Report.Plot = !rf.noPlot
	}
	if f.Changed("bins") {
		cfg.Report.PlotBins = rf.bins
	}
	if f.Changed("trace") {
		cfg.Report.Trace = rf.trace
	}
	return cfg.Validate()
}

// fitAndReport samples, diagnoses, summarizes and writes the report
func fitAndReport(ctx context.Context, out io.Writer, logger *zap.Logger, cfg *config.Config, x *model.Responses) (*summary.Summary, error) {
	smp, err := sampler.New(cfg.Sampling, logger)
	if err != nil {
		return nil, err
	}

	res, err := smp.Run(ctx, x)
	if err != nil {
		return nil, errors.Wrap(err, "Sampling failed")
	}

	traces, err := res.Traces()
	if err != nil {
		return nil, err
	}

	diag := diagnostics.NewReport(traces, res.Stats)
	for _, w := range diag.Warnings {
		logger.Warn("convergence", zap.String("run_id", res.RunID), zap.String("warning", w))
	}

	sum, err := summary.Summarize(traces, x, cfg.Report.HDIProb)
	if err != nil {
		return nil, err
	}

	rep := report.New(out)
	if err := rep.Full(sum, diag, traces, cfg.Report.Plot, cfg.Report.PlotBins); err != nil {
		return nil, err
	}

	if cfg.Report.Trace != "" {
		if err := report.WriteTraceFile(cfg.Report.Trace, traces); err != nil {
			return nil, err
		}
		logger.Info("trace written", zap.String("file", cfg.Report.Trace))
	}

	return sum, nil
}
