package main

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/bytecoding/codec"
	coderr "github.com/wippyai/bytecoding/errors"
	"github.com/wippyai/bytecoding/schema"
)

func newCheckCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <schema.yaml>",
		Short: "Resolve every declared type and report diagnostics",
		Long: `Check parses a schema file and runs attribute resolution, field
ordering and union tag assignment for every declared type, without
generating anything. All diagnostics are reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0])
		},
	}
}

func runCheck(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	f, err := schema.LoadFile(path)
	if err != nil {
		fmt.Fprintln(out, "✗ Check failed")
		fmt.Fprintln(out)
		printDiag(out, err)
		return fmt.Errorf("%s does not parse", path)
	}

	types := f.Types.Types()
	failed := 0
	for _, t := range types {
		if _, rerr := codec.Resolve(t); rerr != nil {
			if failed == 0 {
				fmt.Fprintln(out, "✗ Check failed")
				fmt.Fprintln(out)
			}
			printDiag(out, rerr)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d type(s) failed to resolve", failed, len(types))
	}
	fmt.Fprintf(out, "✓ %d type(s) resolve\n", len(types))
	return nil
}

// printDiag renders one diagnostic, with a file:line:col header when the
// error carries a schema location.
func printDiag(out io.Writer, err error) {
	var ce *coderr.Error
	if stderrors.As(err, &ce) && !ce.Loc.IsZero() {
		fmt.Fprintf(out, "%s\n", ce.Loc)
	}
	fmt.Fprintf(out, "  %v\n\n", err)
}
