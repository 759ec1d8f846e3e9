package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/bytecoding/gen"
	"github.com/wippyai/bytecoding/schema"
)

// genOptions holds flags for the gen command.
type genOptions struct {
	*rootOptions
	Output  string
	Package string
}

func newGenCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &genOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen <schema.yaml>",
		Short: "Generate reflection-free Go encoders and decoders",
		Long: `Gen compiles a schema file into a single Go source file with one
struct, AppendTo/Encode methods and a Decode function per declared
type. The output is gofmt-formatted and deterministic.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "package name for the generated file (default from the schema)")

	return cmd
}

func runGen(cmd *cobra.Command, opts *genOptions, path string) error {
	f, err := schema.LoadFile(path)
	if err != nil {
		return err
	}

	src, err := gen.File(f, gen.Options{Package: opts.Package})
	if err != nil {
		return err
	}

	if opts.Output == "" {
		_, err = cmd.OutOrStdout().Write(src)
		return err
	}
	if err := os.WriteFile(opts.Output, src, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.Output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d types)\n", opts.Output, len(f.Types.Types()))
	return nil
}
