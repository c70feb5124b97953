package main

import (
	"os"

	"github.com/caseworks/reportable/cmd/reportable/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
