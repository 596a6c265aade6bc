package main

import (
	"os"

	"github.com/colbase/colbase/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
