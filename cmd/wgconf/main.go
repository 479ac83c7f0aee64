package main

import (
	"os"

	"github.com/chiquitav2/wireguard-conf/cmd/wgconf/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
