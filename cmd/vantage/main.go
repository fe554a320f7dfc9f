package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/vantage-bi/vantage-go/cli"
)

func main() {
	var cfg cli.Config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %s\n", err)
		os.Exit(1)
	}

	rootCmd := cli.New(cfg).NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
