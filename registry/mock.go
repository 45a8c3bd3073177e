package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// MockIdentityRegistry mocks the IdentityRegistry interface
type MockIdentityRegistry struct {
	mock.Mock
}

// Address mocks the Address method
func (m *MockIdentityRegistry) Address() interfaces.ContractAddress {
	args := m.Called()
	return args.Get(0).(interfaces.ContractAddress)
}

// NewAgent mocks the NewAgent method
func (m *MockIdentityRegistry) NewAgent(ctx context.Context, agentDomain string, agentAddress interfaces.ContractAddress, fee *big.Int) (*types.Transaction, error) {
	args := m.Called(ctx, agentDomain, agentAddress, fee)
	tx, _ := args.Get(0).(*types.Transaction)
	return tx, args.Error(1)
}

// ResolveByAddress mocks the ResolveByAddress method
func (m *MockIdentityRegistry) ResolveByAddress(ctx context.Context, agentAddress interfaces.ContractAddress) (*interfaces.AgentIdentity, error) {
	args := m.Called(ctx, agentAddress)
	info, _ := args.Get(0).(*interfaces.AgentIdentity)
	return info, args.Error(1)
}

// AgentIDFromLogs mocks the AgentIDFromLogs method
func (m *MockIdentityRegistry) AgentIDFromLogs(logs []*types.Log) (*big.Int, error) {
	args := m.Called(logs)
	id, _ := args.Get(0).(*big.Int)
	return id, args.Error(1)
}

// MockRegistryFactory mocks the RegistryFactory interface
type MockRegistryFactory struct {
	mock.Mock
}

// RegistryFor mocks the RegistryFor method
func (m *MockRegistryFactory) RegistryFor(address interfaces.ContractAddress) (interfaces.IdentityRegistry, error) {
	args := m.Called(address)
	registry, _ := args.Get(0).(interfaces.IdentityRegistry)
	return registry, args.Error(1)
}

// MockSigner mocks the Signer interface
type MockSigner struct {
	mock.Mock
}

// Address mocks the Address method
func (m *MockSigner) Address() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}

// ChainID mocks the ChainID method
func (m *MockSigner) ChainID() *big.Int {
	args := m.Called()
	return args.Get(0).(*big.Int)
}

// TransactOpts mocks the TransactOpts method
func (m *MockSigner) TransactOpts(ctx context.Context) *bind.TransactOpts {
	args := m.Called(ctx)
	return args.Get(0).(*bind.TransactOpts)
}
