// Package diag makes remote failures legible without changing control flow.
//
// RunStep wraps a single remote operation (contract deployment, registration
// call, storage write, registry read) with timing and logging. On failure the
// error is decomposed into a fixed, ordered set of fields by Decompose and
// logged, then returned unchanged: the harness never retries and never
// swallows.
//
// Decompose accepts any error value and probes it through optional
// interfaces (go-ethereum rpc.Error and rpc.DataError, TxHash, MetaMessages,
// ShortMessage) and errors.Unwrap. Extraction never panics.
//
// Mask renders secrets for logs as a pure function of the value and the
// number of leading and trailing characters to reveal.
package diag
