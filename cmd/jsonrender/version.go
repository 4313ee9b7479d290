package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0" ./cmd/jsonrender/
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of jsonrender",
		Run: func(cmd *cobra.Command, _ []string) {
			writeLine(cmd.OutOrStdout(), "%s", version)
		},
	}
}
