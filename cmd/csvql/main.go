// Package main provides the csvql command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/csvql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
