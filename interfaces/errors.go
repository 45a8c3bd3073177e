package interfaces

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrMissingCredential is returned when a required secret such as the signer key is not configured.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidAddress is returned for values not matching ^0x[0-9a-fA-F]{40}$.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrIdentityRegistryNotFound is returned when neither the override nor the
	// deployment artifact yields an identity registry address.
	ErrIdentityRegistryNotFound = errors.New("identity registry not found")

	// ErrInvalidArgument is returned for malformed call arguments. Calls failing
	// with it never reach the network.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDependencyMissing is returned when a dependent contract is recorded or
	// deployed before the identity registry.
	ErrDependencyMissing = errors.New("dependency not deployed")

	// ErrTransactionReverted is returned when a mined transaction has a failed status.
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrConfirmationTimeout is returned when a transaction is not mined in time.
	ErrConfirmationTimeout = errors.New("confirmation timeout")

	// ErrAgentEventMissing is returned when a registration receipt has no AgentRegistered event.
	ErrAgentEventMissing = errors.New("agent registered event missing")

	// ErrNoTransactOpts is returned when a transaction is attempted without a signer.
	ErrNoTransactOpts = errors.New("no authorized transactor available")
)

// TxError attaches the transaction, and the receipt when one was obtained, to a failure.
type TxError struct {
	Tx      *types.Transaction
	Receipt *types.Receipt
	Reason  string
	Err     error
}

func (e *TxError) Error() string {
	msg := e.Err.Error()
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Tx != nil {
		msg = fmt.Sprintf("%s (tx %s)", msg, e.Tx.Hash().Hex())
	}
	return msg
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// RevertReason returns the decoded revert reason, if one was recovered.
func (e *TxError) RevertReason() string {
	return e.Reason
}

// TxReceipt returns the receipt of the failed transaction, if it was mined.
func (e *TxError) TxReceipt() *types.Receipt {
	return e.Receipt
}

// TxHash returns the hash of the attached transaction.
func (e *TxError) TxHash() common.Hash {
	if e.Tx == nil {
		return common.Hash{}
	}
	return e.Tx.Hash()
}
