package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CraigKelly/consensus/model"
	"github.com/CraigKelly/consensus/rand"
)

type simulateFlags struct {
	competence []float64
	consensus  []int
	seed       int64
	out        string
	expected   bool
	fit        bool
}

func newSimulateCmd(sp *startupParams) *cobra.Command {
	sf := &simulateFlags{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic response table from known competence and consensus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			truth := &model.Truth{
				Competence: sf.competence,
				Consensus:  sf.consensus,
			}

			var x *model.Responses
			var err error
			if sf.expected {
				x, err = model.Expected(truth)
			} else {
				var gen *rand.Generator
				gen, err = rand.NewGenerator(sf.seed)
				if err != nil {
					return err
				}
				x, err = model.Simulate(truth, gen)
			}
			if err != nil {
				return err
			}

			if sf.out == "" || sf.out == "-" {
				if err := model.WriteCSV(cmd.OutOrStdout(), x); err != nil {
					return err
				}
			} else if err := writeResponses(sf.out, x); err != nil {
				return err
			}

			if !sf.fit {
				return nil
			}
			return fitRecovery(cmd, sp, truth, x)
		},
	}

	f := cmd.Flags()
	f.Float64SliceVar(&sf.competence, "competence", nil, "True competence per informant, e.g. 0.9,0.9,0.6")
	f.IntSliceVar(&sf.consensus, "consensus", nil, "True consensus answer per item, e.g. 1,0,1,0")
	f.Int64VarP(&sf.seed, "seed", "r", 1, "Random seed to use")
	f.StringVarP(&sf.out, "out", "o", "", "Output CSV file (default stdout)")
	f.BoolVar(&sf.expected, "expected", false, "Write the most typical data set instead of a random draw")
	f.BoolVar(&sf.fit, "fit", false, "Fit the model to the generated data and report recovery error")
	_ = cmd.MarkFlagRequired("competence")
	_ = cmd.MarkFlagRequired("consensus")

	return cmd
}

func writeResponses(filename string, x *model.Responses) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Could not create %s", filename)
	}
	werr := model.WriteCSV(f, x)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return errors.Wrapf(cerr, "Could not close %s", filename)
}

// fitRecovery runs the full pipeline on generated data and scores the
// estimates against the truth that generated it
func fitRecovery(cmd *cobra.Command, sp *startupParams, truth *model.Truth, x *model.Responses) error {
	cfg, err := sp.config()
	if err != nil {
		return err
	}
	logger, err := sp.logger()
	if err != nil {
		return errors.Wrap(err, "Could not create logger")
	}
	defer func() { _ = logger.Sync() }()

	out := cmd.OutOrStdout()
	sum, err := fitAndReport(cmd.Context(), out, logger, cfg, x)
	if err != nil {
		return err
	}

	re, err := model.NewRecoveryError(truth, sum.Competence(), sum.Consensus())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nRecovery vs truth\n")
	fmt.Fprintf(out, "Competence | MeanAE:%7.3f MaxAE:%7.3f RMSE:%7.3f\n", re.MeanAbsError, re.MaxAbsError, re.RMSError)
	fmt.Fprintf(out, "Consensus  | %d/%d items recovered\n", re.ConsensusMatches, len(truth.Consensus))
	if len(re.ConsensusMismatch) > 0 {
		names := make([]string, len(re.ConsensusMismatch))
		for k, j := range re.ConsensusMismatch {
			names[k] = x.Items[j]
		}
		fmt.Fprintf(out, "Missed     | %v\n", names)
	}
	return nil
}
