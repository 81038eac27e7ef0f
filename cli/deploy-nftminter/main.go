package main

import (
	"os"

	"github.com/crowdmint/deployer/internal/cli"
	"github.com/crowdmint/deployer/internal/scripts"
)

func main() {
	cmd := cli.NewDeployCmd("deploy-nftminter", scripts.NFTMinter(), cli.DefaultAppInitializer)
	os.Exit(cli.Execute(cmd))
}
