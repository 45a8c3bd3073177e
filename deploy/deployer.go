package deploy

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ruteri/agent-registry-onboarding/bindings/erc8004"
	"github.com/ruteri/agent-registry-onboarding/interfaces"
	"github.com/ruteri/agent-registry-onboarding/registry"
)

// Backend is what ChainDeployer needs from an RPC client.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ChainDeployer deploys contracts from compiled artifacts with a single signer.
type ChainDeployer struct {
	backend   Backend
	signer    interfaces.Signer
	artifacts *erc8004.ArtifactSource

	// ConfirmTimeout bounds the wait for each deployment receipt.
	ConfirmTimeout time.Duration

	// Submissions share the signer's nonce sequence.
	mu sync.Mutex
}

// NewChainDeployer creates a deployer sending transactions through backend.
func NewChainDeployer(backend Backend, signer interfaces.Signer, artifacts *erc8004.ArtifactSource) *ChainDeployer {
	return &ChainDeployer{
		backend:        backend,
		signer:         signer,
		artifacts:      artifacts,
		ConfirmTimeout: registry.DefaultConfirmTimeout,
	}
}

// ChainID returns the signer's chain id.
func (d *ChainDeployer) ChainID() uint64 {
	return d.signer.ChainID().Uint64()
}

// Deployer returns the signer's address.
func (d *ChainDeployer) Deployer() interfaces.ContractAddress {
	return interfaces.ContractAddress(d.signer.Address())
}

// Deploy creates contract name with args as constructor arguments and waits
// until it is mined. A failed receipt or missing code at the new address is
// reported as an error.
func (d *ChainDeployer) Deploy(ctx context.Context, name interfaces.ContractName, args ...interfaces.ContractAddress) (*interfaces.DeployedContract, error) {
	artifact, err := d.artifacts.Load(string(name))
	if err != nil {
		return nil, err
	}
	code, err := artifact.Code()
	if err != nil {
		return nil, err
	}

	params := make([]interface{}, len(args))
	for i, arg := range args {
		params[i] = arg.Common()
	}

	address, tx, err := d.submit(ctx, artifact, code, params)
	if err != nil {
		return nil, fmt.Errorf("could not deploy %s: %w", name, err)
	}

	receipt, err := registry.WaitConfirmed(ctx, d.backend, tx, d.ConfirmTimeout)
	if err != nil {
		return nil, err
	}

	deployedCode, err := d.backend.CodeAt(ctx, address, receipt.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("could not read code of %s at %s: %w", name, address.Hex(), err)
	}
	if len(deployedCode) == 0 {
		return nil, &interfaces.TxError{Tx: tx, Receipt: receipt, Err: fmt.Errorf("no contract code at %s after deployment", address.Hex())}
	}

	return &interfaces.DeployedContract{
		Name:            name,
		Address:         interfaces.ContractAddress(address),
		TxHash:          tx.Hash(),
		BlockNumber:     receipt.BlockNumber.Uint64(),
		ConstructorArgs: args,
	}, nil
}

func (d *ChainDeployer) submit(ctx context.Context, artifact *erc8004.Artifact, code []byte, params []interface{}) (common.Address, *types.Transaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	opts := d.signer.TransactOpts(ctx)
	opts.Value = new(big.Int)

	address, tx, _, err := bind.DeployContract(opts, artifact.ABI, code, d.backend, params...)
	return address, tx, err
}
