package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ruteri/agent-registry-onboarding/diag"
	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// ChainReader is the subset of an RPC client the Transactor needs after submission.
type ChainReader interface {
	bind.DeployBackend
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// RegistrationFee returns the fee newAgent requires, 0.005 ether.
func RegistrationFee() *big.Int {
	return big.NewInt(5_000_000_000_000_000)
}

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ParseEther converts a decimal ether amount such as "0.005" to wei without
// floating point rounding.
func ParseEther(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: empty ether amount", interfaces.ErrInvalidArgument)
	}
	if len(frac) > 18 {
		return nil, fmt.Errorf("%w: %q has more than 18 decimals", interfaces.ErrInvalidArgument, amount)
	}
	for _, c := range whole + frac {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: %q is not a decimal amount", interfaces.ErrInvalidArgument, amount)
		}
	}

	digits := "0" + whole + frac + strings.Repeat("0", 18-len(frac))
	wei, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal amount", interfaces.ErrInvalidArgument, amount)
	}
	return wei, nil
}

// FormatEther renders wei as a decimal ether amount.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	if wei.Sign() < 0 {
		return "-" + FormatEther(new(big.Int).Neg(wei))
	}
	q, r := new(big.Int).QuoRem(wei, weiPerEther, new(big.Int))
	if r.Sign() == 0 {
		return q.String()
	}
	frac := r.String()
	frac = strings.TrimRight(strings.Repeat("0", 18-len(frac))+frac, "0")
	return q.String() + "." + frac
}

// ValidateRegistration checks the registration arguments without touching the
// network and returns the parsed agent address.
func ValidateRegistration(identityAddress interfaces.ContractAddress, agentDomain, agentAddress string, fee *big.Int) (interfaces.ContractAddress, error) {
	if identityAddress.IsZero() {
		return interfaces.ContractAddress{}, fmt.Errorf("%w: identity registry address is not set", interfaces.ErrInvalidArgument)
	}
	if strings.TrimSpace(agentDomain) == "" {
		return interfaces.ContractAddress{}, fmt.Errorf("%w: agent domain is empty", interfaces.ErrInvalidArgument)
	}
	agent, err := interfaces.NewContractAddressFromHex(agentAddress)
	if err != nil {
		return interfaces.ContractAddress{}, fmt.Errorf("%w: agent address: %w", interfaces.ErrInvalidArgument, err)
	}
	if fee == nil || fee.Sign() <= 0 {
		return interfaces.ContractAddress{}, fmt.Errorf("%w: registration fee must be positive", interfaces.ErrInvalidArgument)
	}
	return agent, nil
}

// Transactor registers agents with an identity registry.
type Transactor struct {
	registries     interfaces.RegistryFactory
	backend        ChainReader
	log            *slog.Logger
	ConfirmTimeout time.Duration
}

// NewTransactor creates a transactor submitting through registries and
// confirming through backend.
func NewTransactor(registries interfaces.RegistryFactory, backend ChainReader, log *slog.Logger) *Transactor {
	return &Transactor{
		registries:     registries,
		backend:        backend,
		log:            log,
		ConfirmTimeout: DefaultConfirmTimeout,
	}
}

// RegisterAgent submits newAgent(agentDomain, agentAddress) paying fee, waits
// for one confirmation and reads the agent back.
//
// The read-back is advisory: when it fails the receipt is still returned with
// a nil Info. A reverted transaction yields a *interfaces.TxError carrying the
// receipt and the revert reason when it could be recovered.
func (t *Transactor) RegisterAgent(ctx context.Context, identityAddress interfaces.ContractAddress, agentDomain, agentAddress string, fee *big.Int) (*interfaces.RegistrationReceipt, error) {
	agent, err := ValidateRegistration(identityAddress, agentDomain, agentAddress, fee)
	if err != nil {
		return nil, err
	}

	registry, err := t.registries.RegistryFor(identityAddress)
	if err != nil {
		return nil, fmt.Errorf("could not bind identity registry %s: %w", identityAddress, err)
	}

	t.log.Info("registering agent",
		"registry", identityAddress,
		"agentDomain", agentDomain,
		"agentAddress", agent,
		"fee", FormatEther(fee))

	tx, err := diag.RunStep(ctx, t.log, "newAgent", func(ctx context.Context) (*types.Transaction, error) {
		return registry.NewAgent(ctx, agentDomain, agent, fee)
	})
	if err != nil {
		return nil, err
	}
	t.log.Info("registration transaction submitted", "tx", tx.Hash())

	receipt, err := diag.RunStep(ctx, t.log, "waitForConfirmation", func(ctx context.Context) (*types.Receipt, error) {
		receipt, err := WaitConfirmed(ctx, t.backend, tx, t.ConfirmTimeout)
		var txErr *interfaces.TxError
		if errors.As(err, &txErr) && txErr.Receipt != nil {
			txErr.Reason = t.revertReason(ctx, tx, txErr.Receipt)
		}
		return receipt, err
	})
	if err != nil {
		return nil, err
	}

	result := &interfaces.RegistrationReceipt{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		Logs:        receipt.Logs,
	}
	t.log.Info("registration confirmed", "tx", result.TxHash, "block", result.BlockNumber)

	info, err := diag.RunAdvisoryStep(ctx, t.log, "resolveByAddress", func(ctx context.Context) (*interfaces.AgentIdentity, error) {
		return registry.ResolveByAddress(ctx, agent)
	})
	if err != nil {
		t.log.Info("registered, but could not resolve agent info immediately", "err", err)
		return result, nil
	}

	result.Info = info
	t.log.Info("agent resolved",
		"agentId", info.AgentID,
		"agentDomain", info.AgentDomain,
		"agentAddress", info.AgentAddress)
	return result, nil
}

// revertReason replays a failed transaction at its block to recover the reason.
func (t *Transactor) revertReason(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) string {
	// The replay still reproduces most reverts with a zero sender.
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		t.log.Debug("could not recover sender of reverted transaction", "err", err)
	}

	msg := ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	if _, err := t.backend.CallContract(ctx, msg, receipt.BlockNumber); err != nil {
		if reason := diag.Decompose(err).Reason; reason != "" {
			return reason
		}
		return err.Error()
	}
	return ""
}
