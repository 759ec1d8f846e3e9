package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/bytecoding/codec"
)

// rootOptions holds global flags shared by all commands.
type rootOptions struct {
	Verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bytecodegen",
		Short: "Schema-driven binary codec toolchain",
		Long: `bytecodegen works with YAML type schemas for the fixed little-endian
wire format: it resolves and checks declared types, generates
reflection-free Go encoders and decoders, and inspects resolved
field order and union tags interactively.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			codec.SetLogger(logger)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log resolution steps to stderr")

	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newGenCommand(opts))
	cmd.AddCommand(newInspectCommand(opts))

	return cmd
}
