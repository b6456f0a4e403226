// Command deeprepo audits repository health from CI and issue feeds.
package main

import (
	"os"

	"github.com/nkaminski/deeprepo/cmd"
	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/internal/iocache"
)

func main() {
	defer iocache.CloseStores()

	cmd.SetStoreManager(iocache.Manager)

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}

	if err := cmd.StopProfiling(); err != nil {
		os.Exit(1)
	}
}
