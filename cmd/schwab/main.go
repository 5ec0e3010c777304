package main

import (
	"os"

	"github.com/dw-610/schwab-tracking-app/cmd/schwab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
