package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/big"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/agent-registry-onboarding/cmd/flags"
	"github.com/ruteri/agent-registry-onboarding/diag"
	"github.com/ruteri/agent-registry-onboarding/interfaces"
	"github.com/ruteri/agent-registry-onboarding/registry"
	"github.com/ruteri/agent-registry-onboarding/storage"
)

var flagAgentDomain = &cli.StringFlag{
	Name:     "agent-domain",
	Usage:    "domain or agent card URL to register",
	EnvVars:  []string{"AGENT_DOMAIN"},
	Required: true,
}

var flagAnalysis = &cli.StringFlag{
	Name:  "analysis",
	Usage: "JSON object attached to the evidence document",
}

type summary struct {
	AgentID     string `json:"agentId"`
	TxHash      string `json:"txHash"`
	EvidenceCID string `json:"evidenceCid,omitempty"`
}

func main() {
	if err := flags.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}

	app := &cli.App{
		Name:  "onboard",
		Usage: "register the signing account as an ERC-8004 agent and store its evidence",
		Flags: append(flags.CommonFlags,
			flags.LogServiceFlagFn("onboard"),
			flags.PinataJWTFlag,
			flags.IdentityRegistryFlag,
			flags.DeploymentsDirFlag,
			flags.ModuleFlag,
			flags.FeeFlag,
			flags.ConfirmTimeoutFlag,
			flags.StorageFlag,
			flagAgentDomain,
			flagAnalysis,
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

	flags.LogEnvOverview(cCtx, log)

	analysis, err := parseAnalysis(cCtx.String(flagAnalysis.Name))
	if err != nil {
		return err
	}
	fee, err := flags.RegistrationFee(cCtx)
	if err != nil {
		return err
	}

	evidenceStore, err := storageBackend(cCtx, log)
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

	transactor := registry.NewTransactor(registry.NewRegistryFactory(network.Client, signer), network.Client, log)
	transactor.ConfirmTimeout = flags.ConfirmTimeout(cCtx)

	receipt, err := diag.RunStep(ctx, log, "registerIdentity", func(ctx context.Context) (*interfaces.RegistrationReceipt, error) {
		return transactor.RegisterAgent(ctx, identity, cCtx.String(flagAgentDomain.Name), signer.Address().Hex(), fee)
	})
	if err != nil {
		return err
	}

	agentID, err := agentIDOf(receipt, identity, log)
	if err != nil {
		return err
	}
	log.Info("registerIdentity done", "agentId", agentID, "tx", receipt.TxHash)

	out := summary{AgentID: agentID.String(), TxHash: receipt.TxHash.Hex()}

	evidence := &interfaces.Evidence{
		AgentID:   agentID.String(),
		Timestamp: time.Now().UnixMilli(),
		Analysis:  analysis,
	}
	log.Info("evidence preview", "evidence", diag.ToJSON(evidence))

	if evidenceStore != nil {
		cid, err := diag.RunStep(ctx, log, "storeEvidence", func(ctx context.Context) (interfaces.ContentID, error) {
			return storage.StoreEvidence(ctx, evidenceStore, evidence)
		})
		if err != nil {
			return err
		}
		log.Info("evidence stored", "contentId", cid, "backend", evidenceStore.LocationURI())
		out.EvidenceCID = cid.String()
	} else {
		log.Info("no storage provider configured, evidence not stored")
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cCtx.App.Writer, string(encoded))
	return nil
}

// storageBackend returns nil when neither PINATA_JWT nor --storage is set.
func storageBackend(cCtx *cli.Context, log *slog.Logger) (interfaces.StorageBackend, error) {
	jwt := cCtx.String(flags.PinataJWTFlag.Name)
	uris := flags.TrimmedStrings(cCtx, flags.StorageFlag.Name)
	if jwt != "" {
		uris = append([]string{"pinata://"}, uris...)
	}

	if len(uris) == 0 {
		log.Info("storage provider", "provider", "None")
		return nil, nil
	}

	factory := storage.NewStorageBackendFactory(log, storage.FactoryConfig{PinataJWT: jwt})
	backend, err := factory.CreateMultiBackend(uris)
	if err != nil {
		return nil, err
	}
	log.Info("storage provider", "provider", backend.LocationURI())
	return backend, nil
}

func agentIDOf(receipt *interfaces.RegistrationReceipt, identity interfaces.ContractAddress, log *slog.Logger) (*big.Int, error) {
	agentID, err := registry.ExtractAgentID(receipt.Logs, identity)
	if err == nil {
		return agentID, nil
	}
	if errors.Is(err, interfaces.ErrAgentEventMissing) && receipt.Info != nil && receipt.Info.AgentID != nil {
		log.Warn("no AgentRegistered event in receipt, using resolved agent id", "err", err)
		return receipt.Info.AgentID, nil
	}
	return nil, err
}

func parseAnalysis(v string) (map[string]any, error) {
	if v == "" {
		return nil, nil
	}
	var analysis map[string]any
	if err := json.Unmarshal([]byte(v), &analysis); err != nil {
		return nil, fmt.Errorf("%w: --analysis must be a JSON object: %v", interfaces.ErrInvalidArgument, err)
	}
	return analysis, nil
}
