// tiercards is the CLI for the tier-list pipeline.
//
// Usage:
//
//	tiercards scrape [--fetch-mode=browser|http|auto] [--pages=file=Category,...]
//	tiercards export [--out=<csv>]
//	tiercards stats  [--top=N] [--markdown]
//	tiercards serve
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
