// Command nucleval evaluates nuclear structure data: it parses and renders
// ENSDF-style quantities, aligns datasets and averages aligned groups.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
