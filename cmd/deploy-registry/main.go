package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/agent-registry-onboarding/bindings/erc8004"
	"github.com/ruteri/agent-registry-onboarding/cmd/flags"
	"github.com/ruteri/agent-registry-onboarding/deploy"
	"github.com/ruteri/agent-registry-onboarding/interfaces"
	"github.com/ruteri/agent-registry-onboarding/registry"
)

var flagArtifactsDir = &cli.StringFlag{
	Name:  "artifacts-dir",
	Value: "artifacts",
	Usage: "Hardhat artifacts directory holding the compiled registry contracts",
}

var flagParallel = &cli.BoolFlag{
	Name:  "parallel",
	Usage: "deploy the reputation and validation registries concurrently",
}

var flagNetworkName = &cli.StringFlag{
	Name:  "network-name",
	Value: "localhost",
	Usage: "network name reported in the summary",
}

type summary struct {
	Network            string `json:"network"`
	ChainID            uint64 `json:"chainId"`
	Deployer           string `json:"deployer"`
	IdentityRegistry   string `json:"identityRegistry"`
	ReputationRegistry string `json:"reputationRegistry"`
	ValidationRegistry string `json:"validationRegistry"`
}

func main() {
	if err := flags.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}

	app := &cli.App{
		Name:  "deploy-registry",
		Usage: "deploy the ERC-8004 identity, reputation and validation registries",
		Flags: append(flags.CommonFlags,
			flags.LogServiceFlagFn("deploy-registry"),
			flags.DeploymentsDirFlag,
			flags.ModuleFlag,
			flags.ConfirmTimeoutFlag,
			flagArtifactsDir,
			flagParallel,
			flagNetworkName,
		),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			return flags.Exit(logger, run(cCtx, logger))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context, log *slog.Logger) error {
	ctx := cCtx.Context
	if ctx == nil {
		ctx = context.Background()
	}

	network, signer, err := flags.Connect(ctx, cCtx, log)
	if err != nil {
		return err
	}
	defer network.Close()

	deployer := deploy.NewChainDeployer(network.Client, signer, erc8004.NewArtifactSource(os.DirFS(cCtx.String(flagArtifactsDir.Name))))
	deployer.ConfirmTimeout = flags.ConfirmTimeout(cCtx)

	orchestrator := deploy.NewOrchestrator(deployer, log, deploy.Options{
		Module:   cCtx.String(flags.ModuleFlag.Name),
		Parallel: cCtx.Bool(flagParallel.Name),
	})

	record, deployErr := orchestrator.DeployRegistrySet(ctx)
	if len(record.Contracts) > 0 {
		store := registry.NewDeploymentStore(cCtx.String(flags.DeploymentsDirFlag.Name))
		if err := store.Save(record); err != nil {
			log.Error("could not save deployment artifact", "err", err)
			if deployErr == nil {
				return err
			}
		} else {
			log.Info("deployment artifact saved",
				"dir", cCtx.String(flags.DeploymentsDirFlag.Name),
				"chain", registry.ChainDir(record.ChainID))
		}
	}
	if deployErr != nil {
		return deployErr
	}

	address := func(name interfaces.ContractName) string {
		addr, _ := record.Address(name)
		return addr.String()
	}
	out := summary{
		Network:            cCtx.String(flagNetworkName.Name),
		ChainID:            record.ChainID,
		Deployer:           record.Deployer.String(),
		IdentityRegistry:   address(interfaces.IdentityRegistryContract),
		ReputationRegistry: address(interfaces.ReputationRegistryContract),
		ValidationRegistry: address(interfaces.ValidationRegistryContract),
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cCtx.App.Writer, string(encoded))
	return nil
}
