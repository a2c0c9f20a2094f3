//go:build !wasip1

// Command wasm is the yalp reactor module.  It only does something useful
// when built for GOOS=wasip1.
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "the yalp module must be built with GOOS=wasip1 GOARCH=wasm -buildmode=c-shared")
	os.Exit(1)
}
