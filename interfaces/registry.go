package interfaces

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Signer is the capability a network connection must provide to submit
// state-changing transactions. Implementations are validated when constructed.
type Signer interface {
	// Address returns the account transactions are sent from.
	Address() common.Address

	// ChainID returns the chain the signer produces signatures for.
	ChainID() *big.Int

	// TransactOpts returns fresh transaction options bound to ctx.
	TransactOpts(ctx context.Context) *bind.TransactOpts
}

// IdentityRegistry is the part of the on-chain identity registry used to onboard agents.
type IdentityRegistry interface {
	// Address returns the registry contract address.
	Address() ContractAddress

	// NewAgent submits the payable registration call. It does not wait for mining.
	NewAgent(ctx context.Context, agentDomain string, agentAddress ContractAddress, fee *big.Int) (*types.Transaction, error)

	// ResolveByAddress reads the registry's view of an agent wallet.
	ResolveByAddress(ctx context.Context, agentAddress ContractAddress) (*AgentIdentity, error)

	// AgentIDFromLogs decodes the AgentRegistered event from receipt logs.
	AgentIDFromLogs(logs []*types.Log) (*big.Int, error)
}

// RegistryFactory creates IdentityRegistry clients for different contract addresses.
type RegistryFactory interface {
	RegistryFor(address ContractAddress) (IdentityRegistry, error)
}

// ContractDeployer deploys a named registry contract. Deploy returns only once
// the deployment is confirmed on-chain.
type ContractDeployer interface {
	Deploy(ctx context.Context, name ContractName, args ...ContractAddress) (*DeployedContract, error)

	// ChainID returns the chain deployments are sent to.
	ChainID() uint64

	// Deployer returns the account paying for deployments.
	Deployer() ContractAddress
}
