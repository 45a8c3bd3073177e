package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ruteri/agent-registry-onboarding/bindings/erc8004"
	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// MockRegistryClient provides a simple in-memory implementation of the
// IdentityRegistry interface for testing purposes without requiring a
// blockchain connection. Every NewAgent call is mined immediately; the client
// also serves the resulting receipts so it can stand in for the ChainReader
// a Transactor confirms through.
type MockRegistryClient struct {
	mutex            sync.RWMutex
	address          interfaces.ContractAddress
	fee              *big.Int
	agents           map[interfaces.ContractAddress]*interfaces.AgentIdentity
	domains          map[string]bool
	receipts         map[common.Hash]*types.Receipt
	reverts          map[common.Hash]string // calldata hash -> revert reason
	blockNumber      uint64
	resolveErr       error
	allowTransacting bool
}

// NewMockRegistryClient creates a new mock registry at address charging the
// default registration fee. The client starts in a read-only state; call
// SetTransactOpts to enable NewAgent.
func NewMockRegistryClient(address interfaces.ContractAddress) *MockRegistryClient {
	return &MockRegistryClient{
		address:  address,
		fee:      RegistrationFee(),
		agents:   make(map[interfaces.ContractAddress]*interfaces.AgentIdentity),
		domains:  make(map[string]bool),
		receipts: make(map[common.Hash]*types.Receipt),
		reverts:  make(map[common.Hash]string),
	}
}

// SetTransactOpts enables transaction operations on the mock client.
func (m *MockRegistryClient) SetTransactOpts() {
	m.allowTransacting = true
}

// SetResolveError makes ResolveByAddress fail with err.
func (m *MockRegistryClient) SetResolveError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.resolveErr = err
}

// RegistryFor returns the mock itself when asked for its own address.
func (m *MockRegistryClient) RegistryFor(address interfaces.ContractAddress) (interfaces.IdentityRegistry, error) {
	if address != m.address {
		return nil, fmt.Errorf("no registry at %s", address)
	}
	return m, nil
}

// Address returns the registry address.
func (m *MockRegistryClient) Address() interfaces.ContractAddress {
	return m.address
}

// NewAgent registers the agent and mines the transaction. Underpaying or
// registering an address or domain twice produces a reverted receipt.
func (m *MockRegistryClient) NewAgent(ctx context.Context, agentDomain string, agentAddress interfaces.ContractAddress, fee *big.Int) (*types.Transaction, error) {
	if !m.allowTransacting {
		return nil, interfaces.ErrNoTransactOpts
	}

	identityABI := erc8004.IdentityABI()
	calldata, err := identityABI.Pack("newAgent", agentDomain, agentAddress.Common())
	if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	to := m.address.Common()
	tx := types.NewTx(&types.LegacyTx{
		Nonce: m.blockNumber,
		To:    &to,
		Value: fee,
		Gas:   300000,
		Data:  calldata,
	})

	m.blockNumber++
	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: new(big.Int).SetUint64(m.blockNumber),
	}
	m.receipts[tx.Hash()] = receipt

	var reason string
	switch {
	case fee == nil || fee.Cmp(m.fee) < 0:
		reason = "insufficient fee"
	case m.agents[agentAddress] != nil:
		reason = "address already registered"
	case m.domains[strings.ToLower(agentDomain)]:
		reason = "domain already registered"
	}
	if reason != "" {
		receipt.Status = types.ReceiptStatusFailed
		m.reverts[crypto.Keccak256Hash(calldata)] = reason
		return tx, nil
	}

	id := big.NewInt(int64(len(m.agents) + 1))
	m.agents[agentAddress] = &interfaces.AgentIdentity{
		AgentID:      id,
		AgentDomain:  agentDomain,
		AgentAddress: agentAddress,
	}
	m.domains[strings.ToLower(agentDomain)] = true

	event := identityABI.Events["AgentRegistered"]
	data, err := event.Inputs.NonIndexed().Pack(agentDomain, agentAddress.Common())
	if err != nil {
		return nil, err
	}
	receipt.Logs = []*types.Log{{
		Address:     to,
		Topics:      []common.Hash{event.ID, common.BigToHash(id)},
		Data:        data,
		BlockNumber: m.blockNumber,
		TxHash:      tx.Hash(),
	}}

	return tx, nil
}

// ResolveByAddress returns the stored agent or an error if it is unknown.
func (m *MockRegistryClient) ResolveByAddress(ctx context.Context, agentAddress interfaces.ContractAddress) (*interfaces.AgentIdentity, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	info, exists := m.agents[agentAddress]
	if !exists {
		return nil, errors.New("agent not found")
	}
	copied := *info
	return &copied, nil
}

// AgentIDFromLogs decodes the AgentRegistered event emitted by this registry.
func (m *MockRegistryClient) AgentIDFromLogs(logs []*types.Log) (*big.Int, error) {
	return ExtractAgentID(logs, m.address)
}

// TransactionReceipt returns the receipt of a mined mock transaction.
func (m *MockRegistryClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	receipt, exists := m.receipts[txHash]
	if !exists {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// CodeAt reports non-empty code at the registry address.
func (m *MockRegistryClient) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if contract == m.address.Common() {
		return []byte{0x00}, nil
	}
	return nil, nil
}

// CallContract replays a reverted newAgent call, returning the revert the way
// a node does: code 3 with Error(string) data.
func (m *MockRegistryClient) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	reason, reverted := m.reverts[crypto.Keccak256Hash(call.Data)]
	if !reverted {
		return nil, nil
	}
	return nil, newMockRevertError(reason)
}

// mockRevertError mirrors the json-rpc error returned for reverted calls.
type mockRevertError struct {
	reason string
	data   string
}

func newMockRevertError(reason string) *mockRevertError {
	stringType, _ := abi.NewType("string", "", nil)
	packed, _ := abi.Arguments{{Type: stringType}}.Pack(reason)
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return &mockRevertError{
		reason: reason,
		data:   hexutil.Encode(append(selector, packed...)),
	}
}

func (e *mockRevertError) Error() string          { return "execution reverted: " + e.reason }
func (e *mockRevertError) ErrorCode() int         { return 3 }
func (e *mockRevertError) ErrorData() interface{} { return e.data }
