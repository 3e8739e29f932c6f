package main

import (
	"os"

	"github.com/YoungY620/dsplit/cmd"
	"github.com/YoungY620/dsplit/logging"
)

var Version = "dev"

func main() {
	cmd.SetVersion(Version)
	if err := cmd.Execute(); err != nil {
		logging.New().Errorf("%v", err)
		os.Exit(1)
	}
}
