package main

import (
	"fmt"
	"os"

	"github.com/nhle/teaminbox/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "teaminbox:", err)
		os.Exit(1)
	}
}
