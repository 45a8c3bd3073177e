package deploy

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// MockContractDeployer mocks the ContractDeployer interface
type MockContractDeployer struct {
	mock.Mock
}

// Deploy mocks the Deploy method
func (m *MockContractDeployer) Deploy(ctx context.Context, name interfaces.ContractName, args ...interfaces.ContractAddress) (*interfaces.DeployedContract, error) {
	callArgs := m.Called(ctx, name, args)
	deployed, _ := callArgs.Get(0).(*interfaces.DeployedContract)
	return deployed, callArgs.Error(1)
}

// ChainID mocks the ChainID method
func (m *MockContractDeployer) ChainID() uint64 {
	args := m.Called()
	return args.Get(0).(uint64)
}

// Deployer mocks the Deployer method
func (m *MockContractDeployer) Deployer() interfaces.ContractAddress {
	args := m.Called()
	return args.Get(0).(interfaces.ContractAddress)
}
