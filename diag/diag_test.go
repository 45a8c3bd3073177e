package diag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// revertError mimics the JSON-RPC error returned by a node for a reverted call.
type revertError struct {
	reason string
}

func (e *revertError) Error() string          { return "execution reverted: " + e.reason }
func (e *revertError) ErrorCode() int         { return 3 }
func (e *revertError) ErrorData() interface{} { return revertData(e.reason) }

func revertData(reason string) string {
	stringTy, _ := abi.NewType("string", "", nil)
	packed, _ := abi.Arguments{{Type: stringTy}}.Pack(reason)
	return hexutil.Encode(append(crypto.Keccak256([]byte("Error(string)"))[:4], packed...))
}

type metaError struct{}

func (metaError) Error() string          { return "nonce too low" }
func (metaError) MetaMessages() []string { return []string{"Request Arguments:", "  nonce: 1"} }

type panickingError struct{}

func (*panickingError) Error() string { panic("boom") }

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestMask(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		prefix   int
		suffix   int
		expected string
	}{
		{name: "unset", value: "", prefix: 4, suffix: 6, expected: "<unset>"},
		{name: "too short", value: "0x12345678", prefix: 4, suffix: 6, expected: "<set>"},
		{name: "private key", value: "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", prefix: 4, suffix: 6, expected: "0xac…f2ff80"},
		{name: "custom reveal", value: "abcdefghij", prefix: 2, suffix: 2, expected: "ab…ij"},
		{name: "nothing revealed", value: "secret", prefix: 0, suffix: 0, expected: "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Mask(tt.value, tt.prefix, tt.suffix))
		})
	}

	assert.Equal(t, "0xac…f2ff80", MaskSecret("0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"))
	assert.Equal(t, "<set>", Presence("jwt"))
	assert.Equal(t, "<unset>", Presence(""))
}

func TestRunStep_Success(t *testing.T) {
	log, buf := newTestLogger()

	res, err := RunStep(context.Background(), log, "getAgentCount", func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res)
	assert.Contains(t, buf.String(), "step succeeded")
	assert.Contains(t, buf.String(), "step=getAgentCount")
	assert.Contains(t, buf.String(), "duration=")
}

func TestRunStep_ReturnsOriginalError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	tests := []struct {
		name     string
		injected error
		expected string
	}{
		{name: "simulated revert", injected: &revertError{reason: "insufficient fee"}, expected: "reason=\"insufficient fee\""},
		{name: "simulated network timeout", injected: ctx.Err(), expected: "context deadline exceeded"},
		{name: "wrapped sentinel", injected: fmt.Errorf("waiting for receipt: %w", interfaces.ErrConfirmationTimeout), expected: "short_message=\"waiting for receipt\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newTestLogger()

			_, err := RunStep(context.Background(), log, "registerIdentity", func(ctx context.Context) (*types.Receipt, error) {
				return nil, tt.injected
			})
			assert.True(t, err == tt.injected, "error must be returned unchanged")
			assert.Contains(t, buf.String(), "step failed")
			assert.Contains(t, buf.String(), tt.expected)
		})
	}
}

func TestRunAdvisoryStep_LogsFailureAtInfo(t *testing.T) {
	log, buf := newTestLogger()
	injected := errors.New("header not found")

	_, err := RunAdvisoryStep(context.Background(), log, "resolveByAddress", func(ctx context.Context) (int, error) {
		return 0, injected
	})
	assert.True(t, err == injected)
	assert.Contains(t, buf.String(), "level=INFO msg=\"step failed\" step=resolveByAddress")
	assert.NotContains(t, buf.String(), "level=ERROR")
}

func TestDecompose_RPCRevert(t *testing.T) {
	err := fmt.Errorf("newAgent: %w", &revertError{reason: "insufficient fee"})

	f := Decompose(err)
	assert.Equal(t, "*fmt.wrapError", f.Name)
	assert.Equal(t, "3", f.Code)
	assert.Equal(t, "insufficient fee", f.Reason)
	assert.Equal(t, "newAgent", f.ShortMessage)
	assert.Equal(t, "execution reverted: insufficient fee", f.Cause)
	assert.NotNil(t, f.Data)
}

func TestDecompose_TxError(t *testing.T) {
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 21000, Value: big.NewInt(5)})
	receipt := &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(12)}

	err := &interfaces.TxError{Tx: tx, Receipt: receipt, Reason: "insufficient fee", Err: interfaces.ErrTransactionReverted}

	f := Decompose(err)
	assert.Equal(t, tx.Hash().Hex(), f.TxHash)
	assert.Equal(t, receipt, f.Receipt)
	assert.Equal(t, "insufficient fee", f.Reason)
	assert.Equal(t, interfaces.ErrTransactionReverted.Error(), f.Cause)

	attrs := Fields{}.Attrs()
	assert.Empty(t, attrs)
	assert.NotEmpty(t, f.Attrs())
}

func TestDecompose_MetaAndJoined(t *testing.T) {
	f := Decompose(metaError{})
	assert.Equal(t, []string{"Request Arguments:", "  nonce: 1"}, f.MetaMessages)

	joined := errors.Join(errors.New("first"), errors.New("second"))
	f = Decompose(joined)
	assert.Equal(t, "first; second", f.Cause)
}

func TestDecompose_NeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		f := Decompose(&panickingError{})
		assert.Contains(t, f.Message, "unavailable")
	})
	assert.Equal(t, Fields{}, Decompose(nil))
}

func TestToJSON(t *testing.T) {
	out := ToJSON(map[string]any{
		"agentId": big.NewInt(42),
		"nested":  []any{big.NewInt(1)},
	})
	assert.Contains(t, out, `"agentId": "42"`)
	assert.Contains(t, out, `"1"`)

	assert.Equal(t, `"func()"`, ToJSON(func() {}))
}
