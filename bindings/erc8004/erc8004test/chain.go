package erc8004test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
)

// SimulatedChainID is the chain id of the simulated backend.
const SimulatedChainID = 1337

// AutoMiningClient commits a block after every accepted transaction so that
// code waiting for receipts does not need a separate miner.
type AutoMiningClient struct {
	simulated.Client

	mu      sync.Mutex
	backend *simulated.Backend
	sent    []common.Hash
}

// SendTransaction forwards tx and mines it.
func (c *AutoMiningClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	c.sent = append(c.sent, tx.Hash())
	c.backend.Commit()
	return nil
}

// Sent returns the hashes of all transactions accepted so far, in order.
func (c *AutoMiningClient) Sent() []common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]common.Hash(nil), c.sent...)
}

// TestChain is a funded account on a fresh simulated chain.
type TestChain struct {
	Backend *simulated.Backend
	Client  *AutoMiningClient
	Key     *ecdsa.PrivateKey
	Auth    *bind.TransactOpts
}

// NewTestChain creates a simulated chain with one account holding 10 ETH.
func NewTestChain(t testing.TB) *TestChain {
	t.Helper()

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, big.NewInt(SimulatedChainID))
	if err != nil {
		t.Fatal(err)
	}

	balance := new(big.Int)
	balance.SetString("10000000000000000000", 10) // 10 ETH

	genesisAlloc := map[common.Address]types.Account{
		auth.From: {Balance: balance},
	}

	backend := simulated.NewBackend(genesisAlloc, simulated.WithBlockGasLimit(8000000))
	t.Cleanup(func() { backend.Close() })

	return &TestChain{
		Backend: backend,
		Client:  &AutoMiningClient{Client: backend.Client(), backend: backend},
		Key:     privateKey,
		Auth:    auth,
	}
}

// Install deploys raw creation code and returns the contract address.
func (c *TestChain) Install(t testing.TB, code []byte) common.Address {
	t.Helper()

	ctx := context.Background()
	nonce, err := c.Client.PendingNonceAt(ctx, c.Auth.From)
	if err != nil {
		t.Fatal(err)
	}
	gasPrice, err := c.Client.SuggestGasPrice(ctx)
	if err != nil {
		t.Fatal(err)
	}

	tx := types.NewContractCreation(nonce, big.NewInt(0), 500000, gasPrice, code)
	signed, err := c.Auth.Signer(c.Auth.From, tx)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Client.SendTransaction(ctx, signed); err != nil {
		t.Fatal(err)
	}

	receipt, err := c.Client.TransactionReceipt(ctx, signed.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		t.Fatalf("installing contract failed")
	}
	return receipt.ContractAddress
}
