package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/brenns10/regex"
	"github.com/brenns10/regex/internal/asmfmt"
)

// newFmtCommand implements the supplemental `regex fmt` subcommand:
// dump a compiled program's canonical assembly text. If ARG names a
// readable file its contents are read as assembly and rewritten (a
// round-trip canonicalizer); otherwise ARG is compiled as a pattern.
func newFmtCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt PATTERN|FILE",
		Short: "print a pattern or assembly file's canonical assembly form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := args[0]

			if info, err := os.Stat(arg); err == nil && info.Mode().IsRegular() {
				f, err := os.Open(arg)
				if err != nil {
					return err
				}
				defer f.Close()
				prog, err := asmfmt.Read(f)
				if err != nil {
					return err
				}
				return asmfmt.Write(cmd.OutOrStdout(), prog)
			}

			prog, err := regex.Compile(arg)
			if err != nil {
				return err
			}
			return prog.WriteAssembly(cmd.OutOrStdout())
		},
	}
}
