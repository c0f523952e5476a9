// Command regex is the CLI front end for the regex engine: compile or
// load a program, run it against one or more subjects, and print the
// match result.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/brenns10/regex"
	"github.com/brenns10/regex/internal/asmfmt"
	"github.com/brenns10/regex/internal/regexcfg"
	"github.com/brenns10/regex/internal/regexlog"
	"go.uber.org/zap"
)

var (
	configPath string
	noColor    bool
	verbose    bool
)

func main() {
	root := newRootCommand()
	root.AddCommand(newFmtCommand())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regex PATTERN SUBJECT [SUBJECT...]",
		Short: "compile or load a program and match it against subjects",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runMatch,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a .regexrc named-pattern file (default $HOME/.regexrc)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	setupLogging()

	patternArg := norm.NFC.String(args[0])
	subjects := args[1:]

	prog, err := resolveProgram(patternArg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "regex: %v\n", err)
		return err
	}

	out := cmd.OutOrStdout()
	useColor := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	for _, subj := range subjects {
		subj = norm.NFC.String(subj)
		printResult(out, prog, subj, useColor)
	}
	return nil
}

// resolveProgram dispatches a command-line pattern argument: an `@name`
// argument looks up a named pattern in the .regexrc config; otherwise,
// if the argument names a readable file, its contents are parsed as a
// textual program; otherwise the argument itself is compiled as a
// pattern.
func resolveProgram(patternArg string) (*regex.Program, error) {
	if name, ok := strings.CutPrefix(patternArg, "@"); ok {
		path := configPath
		if path == "" {
			p, err := regexcfg.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		cfg, err := regexcfg.Load(path)
		if err != nil {
			return nil, err
		}
		pattern, ok := cfg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("no pattern named %q in %s", name, path)
		}
		return regex.Compile(pattern)
	}

	if info, err := os.Stat(patternArg); err == nil && info.Mode().IsRegular() {
		f, err := os.Open(patternArg)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		prog, err := asmfmt.Read(f)
		if err != nil {
			return nil, err
		}
		return regex.CompileProgram(prog), nil
	}

	return regex.Compile(patternArg)
}

func printResult(out io.Writer, prog *regex.Program, subject string, useColor bool) {
	idx := prog.FindSubmatchIndex([]byte(subject))
	if idx == nil {
		if useColor {
			fmt.Fprintln(out, color.RedString("no match"))
		} else {
			fmt.Fprintln(out, "no match")
		}
		return
	}

	line := fmt.Sprintf("match(%d)", idx[1])
	for i := 2; i+1 < len(idx); i += 2 {
		line += fmt.Sprintf(" (%d,%d)", idx[i], idx[i+1])
	}
	if useColor {
		fmt.Fprintln(out, color.GreenString(line))
	} else {
		fmt.Fprintln(out, line)
	}
}

func setupLogging() {
	if !verbose {
		return
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	regexlog.SetLogger(l)
}
