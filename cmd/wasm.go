package cmd

import (
	"context"
	"os"

	"github.com/luthersystems/yalp/pkg/repl"
	"github.com/luthersystems/yalp/pkg/wasmhost"
	"github.com/spf13/cobra"
)

// wasmCmd runs an interactive session in a compiled module
var wasmCmd = &cobra.Command{
	Use:   "wasm <module.wasm>",
	Short: "Run an interactive session in a compiled wasm module",
	Long: `Load a yalp module compiled for GOOS=wasip1 and run an interactive
session in it.  The module is built with:

	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o yalp.wasm ./wasm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()
		ctx := context.Background()
		client, err := wasmhost.Open(ctx, args[0],
			wasmhost.WithLogger(logger),
			wasmhost.WithStderr(os.Stderr))
		if err != nil {
			return err
		}
		defer client.Close(ctx)
		return repl.RunRepl(ctx, client, replPrompt)
	},
}

func init() {
	rootCmd.AddCommand(wasmCmd)
}
