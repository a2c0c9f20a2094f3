package cmd

import (
	"context"

	"github.com/luthersystems/yalp/pkg/boundary"
	"github.com/luthersystems/yalp/pkg/prelude"
	"github.com/luthersystems/yalp/pkg/repl"
	"github.com/luthersystems/yalp/pkg/yalp"
	"github.com/spf13/cobra"
)

const replPrompt = "yalp> "

var (
	replPrelude        string
	replMaxStackHeight int
)

// replCmd runs an interactive session
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run an interactive session",
	Long: `Run an interactive session on an in-process module.  Enter
` + repl.BindingsCommand + ` to list the variables bound in the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()
		opts, err := sessionOptions()
		if err != nil {
			return err
		}
		host, err := boundary.NewHost(
			boundary.NewArena(boundary.DefaultMemoryLimit),
			boundary.WithLogger(logger),
			boundary.WithSessionOptions(opts...))
		if err != nil {
			return err
		}
		defer host.Close()
		return repl.RunRepl(context.Background(), host, replPrompt)
	},
}

func sessionOptions() ([]yalp.Option, error) {
	var opts []yalp.Option
	if replPrelude != "" {
		defs, err := prelude.LoadFile(replPrelude)
		if err != nil {
			return nil, err
		}
		opts = append(opts, yalp.WithPrelude(defs))
	}
	if replMaxStackHeight > 0 {
		opts = append(opts, yalp.WithMaxStackHeight(replMaxStackHeight))
	}
	return opts, nil
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringVar(&replPrelude, "prelude", "",
		"Bootstrap sessions from a TOML prelude file instead of the standard prelude")
	replCmd.Flags().IntVar(&replMaxStackHeight, "max-stack-height", 0,
		"Limit nested evaluation (default 10000)")
}
