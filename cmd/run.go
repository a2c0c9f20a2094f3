package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/yalp/pkg/yalp"
	"github.com/spf13/cobra"
)

var (
	runExpression bool
	runPrint      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run lisp code",
	Long: `Run lisp code supplied via the command line or a file.  All
sources are loaded into one session with the standard prelude.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sources, err := runReadSources(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		err = runSources(cmd.OutOrStdout(), sources)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

type runSource struct {
	name string
	text string
}

func runReadSources(args []string) ([]runSource, error) {
	sources := make([]runSource, len(args))
	if runExpression {
		for i := range args {
			sources[i] = runSource{fmt.Sprintf("expression %d", i), args[i]}
		}
		return sources, nil
	}
	for i, path := range args {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources[i] = runSource{path, string(b)}
	}
	return sources, nil
}

func runSources(w io.Writer, sources []runSource) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	opts, err := sessionOptions()
	if err != nil {
		return err
	}
	s, err := yalp.New(append(opts, yalp.WithLogger(logger))...)
	if err != nil {
		return err
	}
	for _, src := range sources {
		results, err := s.Load(src.name, src.text)
		if runPrint {
			for _, result := range results {
				fmt.Fprintln(w, result)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Here flags for the run command are defined
	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
	runCmd.Flags().StringVar(&replPrelude, "prelude", "",
		"Bootstrap the session from a TOML prelude file instead of the standard prelude")
	runCmd.Flags().IntVar(&replMaxStackHeight, "max-stack-height", 0,
		"Limit nested evaluation (default 10000)")
}
