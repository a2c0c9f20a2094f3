package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/yalp/pkg/runtime"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootDebug bool

const rootUsage = "Usage: yalp <lisp string>"

// rootCmd parses and evaluates a single expression when called without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "yalp <lisp string>",
	Short: "Yet another lisp program",
	Long: `Parse and evaluate a lisp expression in a fresh runtime without the
standard prelude.  Use the repl subcommand for an interactive session.

A program that begins with "-" or is the name of a subcommand must follow
"--", as in

	yalp -- -5
	yalp -- run`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		code := runRoot(cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		if code != 0 {
			os.Exit(code)
		}
	},
}

// runRoot runs the program in args and returns the process exit code.
func runRoot(stdout, stderr io.Writer, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(stdout, rootUsage)
		return 1
	}
	err := runProgram(stdout, args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// runProgram writes the parse result of program and, when it parses, its
// evaluation result.
func runProgram(w io.Writer, program string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	r, err := runtime.New(runtime.WithLogger(logger))
	if err != nil {
		return err
	}
	expr, err := r.Parse(program)
	if err != nil {
		fmt.Fprintf(w, "Parse result: Err(%v)\n", err)
		return nil
	}
	fmt.Fprintf(w, "Parse result: Ok(%s)\n", r.Print(expr, 0))
	v, err := r.Eval(expr)
	if err != nil {
		fmt.Fprintf(w, "Evaluation result: Err(%v)\n", err)
		return nil
	}
	fmt.Fprintf(w, "Evaluation result: Ok(%s)\n", r.Print(v, 0))
	return nil
}

// newLogger returns a development logger when --debug is set.  Otherwise
// only warnings and errors are logged, to stderr.
func newLogger() (*zap.Logger, error) {
	if rootDebug {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	config.Encoding = "console"
	config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return config.Build()
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main().  It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false,
		"Write debug logs to stderr")
}
