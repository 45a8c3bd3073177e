package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ruteri/agent-registry-onboarding/bindings/erc8004"
	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// OnchainIdentityClient implements the interfaces.IdentityRegistry interface for
// interacting with an IdentityRegistry smart contract deployed on a blockchain.
type OnchainIdentityClient struct {
	contract *erc8004.IdentityRegistry
	client   bind.ContractBackend
	address  interfaces.ContractAddress
	signer   interfaces.Signer
}

// NewOnchainIdentityClient creates a new client for the IdentityRegistry contract
// at the specified address.
func NewOnchainIdentityClient(client bind.ContractBackend, address interfaces.ContractAddress) (*OnchainIdentityClient, error) {
	contract, err := erc8004.NewIdentityRegistry(address.Common(), client)
	if err != nil {
		return nil, err
	}

	return &OnchainIdentityClient{
		contract: contract,
		client:   client,
		address:  address,
	}, nil
}

// SetSigner sets the signer required for functions that modify state.
// This must be called before using any methods that send transactions to the blockchain.
func (c *OnchainIdentityClient) SetSigner(signer interfaces.Signer) {
	c.signer = signer
}

// Address returns the registry contract address.
func (c *OnchainIdentityClient) Address() interfaces.ContractAddress {
	return c.address
}

// NewAgent submits newAgent(agentDomain, agentAddress) with fee attached as value.
// Returns the transaction and an error if the transaction could not be sent.
func (c *OnchainIdentityClient) NewAgent(ctx context.Context, agentDomain string, agentAddress interfaces.ContractAddress, fee *big.Int) (*types.Transaction, error) {
	if c.signer == nil {
		return nil, interfaces.ErrNoTransactOpts
	}

	opts := c.signer.TransactOpts(ctx)
	opts.Value = new(big.Int).Set(fee)

	return c.contract.NewAgent(opts, agentDomain, agentAddress.Common())
}

// ResolveByAddress reads the agent registered for a wallet address.
func (c *OnchainIdentityClient) ResolveByAddress(ctx context.Context, agentAddress interfaces.ContractAddress) (*interfaces.AgentIdentity, error) {
	info, err := c.contract.ResolveByAddress(&bind.CallOpts{Context: ctx}, agentAddress.Common())
	if err != nil {
		return nil, err
	}

	return &interfaces.AgentIdentity{
		AgentID:      info.AgentId,
		AgentDomain:  info.AgentDomain,
		AgentAddress: interfaces.ContractAddress(info.AgentAddress),
	}, nil
}

// RegistrationFee reads the fee constant advertised by the registry.
func (c *OnchainIdentityClient) RegistrationFee(ctx context.Context) (*big.Int, error) {
	return c.contract.RegistrationFee(&bind.CallOpts{Context: ctx})
}

// AgentIDFromLogs decodes the AgentRegistered event emitted by this registry.
func (c *OnchainIdentityClient) AgentIDFromLogs(logs []*types.Log) (*big.Int, error) {
	return ExtractAgentID(logs, c.address)
}

// ExtractAgentID returns the agent id of the first AgentRegistered event emitted
// by registry in logs, or ErrAgentEventMissing.
func ExtractAgentID(logs []*types.Log, registry interfaces.ContractAddress) (*big.Int, error) {
	for _, log := range logs {
		if log == nil || log.Address != registry.Common() {
			continue
		}

		ev, err := erc8004.ParseAgentRegistered(*log)
		if errors.Is(err, erc8004.ErrEventMismatch) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("could not decode AgentRegistered event: %w", err)
		}
		return ev.AgentId, nil
	}

	return nil, interfaces.ErrAgentEventMissing
}

// RegistryFactory creates IdentityRegistry instances for different contract addresses.
type RegistryFactory struct {
	client bind.ContractBackend
	signer interfaces.Signer
}

// NewRegistryFactory creates a new factory for registry clients. Clients it
// creates transact with signer; a nil signer yields read-only clients.
func NewRegistryFactory(client bind.ContractBackend, signer interfaces.Signer) *RegistryFactory {
	return &RegistryFactory{client: client, signer: signer}
}

// RegistryFor returns an IdentityRegistry instance for the specified contract address.
func (f *RegistryFactory) RegistryFor(address interfaces.ContractAddress) (interfaces.IdentityRegistry, error) {
	client, err := NewOnchainIdentityClient(f.client, address)
	if err != nil {
		return nil, err
	}
	if f.signer != nil {
		client.SetSigner(f.signer)
	}
	return client, nil
}
