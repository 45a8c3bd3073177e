package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// DefaultConfirmTimeout bounds how long a submitted transaction may stay unmined.
const DefaultConfirmTimeout = 2 * time.Minute

// WaitConfirmed waits until tx is mined, up to timeout (no bound if zero).
// A receipt with failed status is returned together with a *interfaces.TxError
// wrapping ErrTransactionReverted.
func WaitConfirmed(ctx context.Context, backend bind.DeployBackend, tx *types.Transaction, timeout time.Duration) (*types.Receipt, error) {
	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(waitCtx, backend, tx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &interfaces.TxError{Tx: tx, Err: fmt.Errorf("%w after %s", interfaces.ErrConfirmationTimeout, timeout)}
		}
		return nil, &interfaces.TxError{Tx: tx, Err: err}
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, &interfaces.TxError{Tx: tx, Receipt: receipt, Err: interfaces.ErrTransactionReverted}
	}
	return receipt, nil
}
