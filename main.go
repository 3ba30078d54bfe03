package main

import (
	"os"

	"github.com/hok11/hok-rank/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
