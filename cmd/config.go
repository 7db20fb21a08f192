package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newConfigCmd(sp *startupParams) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sp.config()
			if err != nil {
				return err
			}
			out, err := cfg.Marshal()
			if err != nil {
				return errors.Wrap(err, "Could not render config")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
