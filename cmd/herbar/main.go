package main

import (
	"fmt"
	"os"

	"herbar/client/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "herbar:", err)
		os.Exit(1)
	}
}
