package flags

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ruteri/agent-registry-onboarding/common"
	"github.com/ruteri/agent-registry-onboarding/diag"
	"github.com/ruteri/agent-registry-onboarding/interfaces"
	"github.com/ruteri/agent-registry-onboarding/registry"
)

// ErrUsage is returned for missing or malformed positional arguments.
var ErrUsage = errors.New("usage")

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
		Output:  cCtx.App.ErrWriter,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// LoadDotEnv loads variables from the given files (".env" if none) into the
// process environment without overriding variables already set. Missing files
// are ignored. It must run before the cli app parses its flags.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not load %s: %w", file, err)
		}
	}
	return nil
}

// PositionalArgs returns exactly n positional arguments, the ones following
// "--" when present.
func PositionalArgs(cCtx *cli.Context, n int) ([]string, error) {
	args := cCtx.Args().Slice()
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) != n {
		return nil, fmt.Errorf("%w: expected %d positional arguments, got %d", ErrUsage, n, len(args))
	}
	return args, nil
}

// AgentArgs returns the <agentDomain> <agentAddress> positional pair. Both
// are checked here so malformed input never reaches the network.
func AgentArgs(cCtx *cli.Context) (agentDomain, agentAddress string, err error) {
	args, err := PositionalArgs(cCtx, 2)
	if err != nil {
		return "", "", err
	}
	agentDomain, agentAddress = strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	if agentDomain == "" {
		return "", "", fmt.Errorf("%w: empty agent domain", ErrUsage)
	}
	if !interfaces.IsHexAddress(agentAddress) {
		return "", "", fmt.Errorf("%w: invalid agent address %q", ErrUsage, args[1])
	}
	return agentDomain, agentAddress, nil
}

// Connect dials the RPC endpoint and creates the signer from --private-key.
// The key is checked before any network access.
func Connect(ctx context.Context, cCtx *cli.Context, log *slog.Logger) (*registry.Network, *registry.KeySigner, error) {
	privateKey := cCtx.String(PrivateKeyFlag.Name)
	if privateKey == "" {
		return nil, nil, fmt.Errorf("%w: missing PRIVATE_KEY env var", interfaces.ErrMissingCredential)
	}

	network, err := diag.RunStep(ctx, log, "connect", func(ctx context.Context) (*registry.Network, error) {
		return registry.Dial(ctx, cCtx.String(RpcAddrFlag.Name))
	})
	if err != nil {
		return nil, nil, err
	}

	signer, err := registry.NewKeySigner(privateKey, network.ChainID)
	if err != nil {
		network.Close()
		return nil, nil, err
	}

	log.Info("connected",
		"rpc", network.RPCURL,
		"chainId", network.ChainID,
		"signer", signer.Address())
	return network, signer, nil
}

// RegistrationFee parses --fee.
func RegistrationFee(cCtx *cli.Context) (*big.Int, error) {
	return registry.ParseEther(cCtx.String(FeeFlag.Name))
}

// LogEnvOverview logs which secrets and overrides are configured, masking values.
func LogEnvOverview(cCtx *cli.Context, log *slog.Logger) {
	override := cCtx.String(IdentityRegistryFlag.Name)
	if override == "" {
		override = "<unset>"
	}

	log.Info("environment",
		"PRIVATE_KEY", diag.MaskSecret(cCtx.String(PrivateKeyFlag.Name)),
		"PINATA_JWT", diag.Presence(cCtx.String(PinataJWTFlag.Name)),
		"IDENTITY_REGISTRY", override,
		"RPC_ADDR", cCtx.String(RpcAddrFlag.Name))
}

// NewResolver creates an address resolver over --deployments-dir.
func NewResolver(cCtx *cli.Context, log *slog.Logger) *registry.AddressResolver {
	store := registry.NewDeploymentStore(cCtx.String(DeploymentsDirFlag.Name))
	return registry.NewAddressResolver(store, log).WithModule(cCtx.String(ModuleFlag.Name))
}

var RpcAddrFlag = &cli.StringFlag{
	Name:    "rpc-addr",
	Value:   "http://127.0.0.1:8545",
	Usage:   "address to connect to RPC",
	EnvVars: []string{"RPC_ADDR"},
}

var PrivateKeyFlag = &cli.StringFlag{
	Name:    "private-key",
	Usage:   "hex private key of the signing account, with or without 0x prefix",
	EnvVars: []string{"PRIVATE_KEY"},
}

var PinataJWTFlag = &cli.StringFlag{
	Name:    "pinata-jwt",
	Usage:   "Pinata JWT, enables pinning evidence with Pinata",
	EnvVars: []string{"PINATA_JWT"},
}

var IdentityRegistryFlag = &cli.StringFlag{
	Name:    "identity-registry",
	Usage:   "identity registry address, overrides the deployment artifact",
	EnvVars: []string{"IDENTITY_REGISTRY"},
}

var DeploymentsDirFlag = &cli.StringFlag{
	Name:    "deployments-dir",
	Value:   "ignition/deployments",
	Usage:   "directory holding chain-<id>/deployed_addresses.json artifacts",
	EnvVars: []string{"DEPLOYMENTS_DIR"},
}

var ModuleFlag = &cli.StringFlag{
	Name:  "module",
	Value: interfaces.DefaultModuleName,
	Usage: "deployment module the artifact keys are scoped by",
}

var FeeFlag = &cli.StringFlag{
	Name:  "fee",
	Value: "0.005",
	Usage: "registration fee in ether",
}

var ConfirmTimeoutFlag = &cli.DurationFlag{
	Name:  "confirm-timeout",
	Value: registry.DefaultConfirmTimeout,
	Usage: "how long to wait for a transaction to be mined",
}

var StorageFlag = &cli.StringSliceFlag{
	Name:  "storage",
	Usage: "evidence storage location URI (file://, ipfs://, pinata://, s3://), can be repeated",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	RpcAddrFlag,
	PrivateKeyFlag,
}

// ConfirmTimeout returns --confirm-timeout, or the default when the flag is not defined.
func ConfirmTimeout(cCtx *cli.Context) time.Duration {
	if d := cCtx.Duration(ConfirmTimeoutFlag.Name); d > 0 {
		return d
	}
	return registry.DefaultConfirmTimeout
}

// TrimmedStrings returns the non-empty trimmed values of a string slice flag.
func TrimmedStrings(cCtx *cli.Context, name string) []string {
	var out []string
	for _, v := range cCtx.StringSlice(name) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Exit logs err with its decomposed fields and returns it as a cli exit error with code 1.
func Exit(log *slog.Logger, err error) error {
	if err == nil {
		return nil
	}
	diag.LogError(log, "FATAL: unhandled error", err)
	return cli.Exit(err.Error(), 1)
}
