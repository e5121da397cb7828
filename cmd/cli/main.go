package main

import (
	"fmt"
	"os"

	"github.com/de-tools/report-atlas/pkg/runtime/terminal"
	"github.com/de-tools/report-atlas/pkg/services/reports"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Registry: reports.Default(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
