// Package main is the entry point for the asmstats CLI.
package main

import (
	"github.com/huangsam/asmstats/cmd"
	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()

	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	_ = contract.Logger().Sync()
	iocache.CloseCaching()

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
