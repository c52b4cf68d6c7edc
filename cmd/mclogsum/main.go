package main

import (
	"os"

	"github.com/yildizm/mclogsum/internal/cli"
	"github.com/yildizm/mclogsum/internal/logger"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := cli.NewRootCommand(version, commit, date)
	err := cmd.Execute()
	_ = logger.Base().Sync()
	if err != nil {
		os.Exit(1)
	}
}
