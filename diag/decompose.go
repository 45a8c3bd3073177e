package diag

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// Fields is the best-effort decomposition of a failure. Empty fields were not
// present on the error.
type Fields struct {
	Name         string
	Message      string
	Code         string
	Reason       string
	ShortMessage string
	Data         any
	Cause        string
	TxHash       string
	Receipt      *types.Receipt
	MetaMessages []string
}

type (
	codeStringer  interface{ Code() string }
	reasoner      interface{ RevertReason() string }
	shortMessager interface{ ShortMessage() string }
	txHasher      interface{ TxHash() common.Hash }
	txCarrier     interface{ Transaction() *types.Transaction }
	receiptHolder interface{ TxReceipt() *types.Receipt }
	metaMessager  interface{ MetaMessages() []string }
)

// Decompose extracts diagnostic fields from err. It never panics; a panic
// raised by the error's own methods truncates the result instead.
func Decompose(err error) (f Fields) {
	if err == nil {
		return Fields{}
	}

	defer func() {
		if r := recover(); r != nil && f.Message == "" {
			f.Message = fmt.Sprintf("<error message unavailable: %v>", r)
		}
	}()

	f.Name = fmt.Sprintf("%T", err)
	f.Message = err.Error()

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		f.Code = fmt.Sprintf("%d", rpcErr.ErrorCode())
	} else {
		var coded codeStringer
		if errors.As(err, &coded) {
			f.Code = coded.Code()
		}
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		f.Data = dataErr.ErrorData()
	}

	var withReason reasoner
	if errors.As(err, &withReason) {
		f.Reason = withReason.RevertReason()
	}
	if f.Reason == "" {
		f.Reason = revertReason(f.Data)
	}

	var short shortMessager
	if errors.As(err, &short) {
		f.ShortMessage = short.ShortMessage()
	} else if head, _, found := strings.Cut(f.Message, ": "); found {
		f.ShortMessage = head
	}

	if cause := errors.Unwrap(err); cause != nil {
		f.Cause = cause.Error()
	} else if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var causes []string
		for _, e := range joined.Unwrap() {
			if e != nil {
				causes = append(causes, e.Error())
			}
		}
		f.Cause = strings.Join(causes, "; ")
	}

	var hasher txHasher
	var carrier txCarrier
	if errors.As(err, &hasher) && hasher.TxHash() != (common.Hash{}) {
		f.TxHash = hasher.TxHash().Hex()
	} else if errors.As(err, &carrier) && carrier.Transaction() != nil {
		f.TxHash = carrier.Transaction().Hash().Hex()
	}

	var holder receiptHolder
	if errors.As(err, &holder) {
		f.Receipt = holder.TxReceipt()
	}

	var meta metaMessager
	if errors.As(err, &meta) {
		f.MetaMessages = meta.MetaMessages()
	}

	return f
}

// revertReason decodes Error(string) revert data carried by an rpc error.
func revertReason(data any) string {
	var raw []byte
	switch d := data.(type) {
	case string:
		decoded, err := hexutil.Decode(d)
		if err != nil {
			return ""
		}
		raw = decoded
	case []byte:
		raw = d
	case hexutil.Bytes:
		raw = d
	default:
		return ""
	}

	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return ""
	}
	return reason
}

// Attrs renders the present fields in their fixed order.
func (f Fields) Attrs() []any {
	var attrs []any
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, slog.String(key, value))
		}
	}

	add("error_name", f.Name)
	add("error_message", f.Message)
	add("error_code", f.Code)
	add("reason", f.Reason)
	if f.ShortMessage != f.Message {
		add("short_message", f.ShortMessage)
	}
	if f.Data != nil {
		add("data", ToJSON(f.Data))
	}
	add("cause", f.Cause)
	add("tx_hash", f.TxHash)
	if f.Receipt != nil {
		add("receipt", ToJSON(f.Receipt))
	}
	if len(f.MetaMessages) > 0 {
		add("meta", strings.Join(f.MetaMessages, "\n"))
	}
	return attrs
}

// LogError logs err with its decomposition at error level.
func LogError(log *slog.Logger, msg string, err error) {
	if log == nil {
		log = slog.Default()
	}
	log.Error(msg, Decompose(err).Attrs()...)
}
