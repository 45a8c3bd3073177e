package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/agent-registry-onboarding/cmd/flags"
	"github.com/ruteri/agent-registry-onboarding/interfaces"
	"github.com/ruteri/agent-registry-onboarding/registry"
)

const usage = "register-agent [flags] -- <agentDomain> <agentAddress>"

type summary struct {
	Registry     string `json:"identityRegistry"`
	TxHash       string `json:"txHash"`
	BlockNumber  uint64 `json:"blockNumber"`
	AgentID      string `json:"agentId,omitempty"`
	AgentDomain  string `json:"agentDomain"`
	AgentAddress string `json:"agentAddress"`
}

func main() {
	if err := flags.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}

	app := &cli.App{
		Name:      "register-agent",
		Usage:     "register an agent with the ERC-8004 identity registry",
		UsageText: usage,
		Flags: append(flags.CommonFlags,
			flags.LogServiceFlagFn("register-agent"),
			flags.IdentityRegistryFlag,
			flags.DeploymentsDirFlag,
			flags.ModuleFlag,
			flags.FeeFlag,
			flags.ConfirmTimeoutFlag,
		),
		Action: func(cCtx *cli.Context) error {
			agentDomain, agentAddress, err := flags.AgentArgs(cCtx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("%v\nUsage: %s", err, usage), 1)
			}

			logger := flags.SetupLogger(cCtx)
			return flags.Exit(logger, run(cCtx, logger, agentDomain, agentAddress))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context, log *slog.Logger, agentDomain, agentAddress string) error {
	ctx := cCtx.Context
	if ctx == nil {
		ctx = context.Background()
	}

	fee, err := flags.RegistrationFee(cCtx)
	if err != nil {
		return err
	}

	network, signer, err := flags.Connect(ctx, cCtx, log)
	if err != nil {
		return err
	}
	defer network.Close()

	identity, err := flags.NewResolver(cCtx, log).ResolveIdentityRegistryAddress(network.ChainID.Uint64(), cCtx.String(flags.IdentityRegistryFlag.Name))
	if err != nil {
		return err
	}
	log.Info("using identity registry", "address", identity)

	transactor := registry.NewTransactor(registry.NewRegistryFactory(network.Client, signer), network.Client, log)
	transactor.ConfirmTimeout = flags.ConfirmTimeout(cCtx)

	receipt, err := transactor.RegisterAgent(ctx, identity, agentDomain, agentAddress, fee)
	if err != nil {
		return err
	}

	out := summary{
		Registry:     identity.String(),
		TxHash:       receipt.TxHash.Hex(),
		BlockNumber:  receipt.BlockNumber,
		AgentDomain:  agentDomain,
		AgentAddress: agentAddress,
	}

	agentID, err := registry.ExtractAgentID(receipt.Logs, identity)
	switch {
	case err == nil:
		out.AgentID = agentID.String()
	case errors.Is(err, interfaces.ErrAgentEventMissing) && receipt.Info != nil:
		log.Warn("no AgentRegistered event in receipt, using resolved agent id", "err", err)
		out.AgentID = receipt.Info.AgentID.String()
	default:
		log.Error("could not extract agent id from receipt", "err", err)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cCtx.App.Writer, string(encoded))
	return nil
}
