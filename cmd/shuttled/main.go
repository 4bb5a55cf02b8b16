package main

import (
	"fmt"
	"os"

	"github.com/shuttle-hq/shuttle-sub002/internal/commands"
	"github.com/shuttle-hq/shuttle-sub002/internal/version"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime
	version.GitCommit = GitCommit

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
