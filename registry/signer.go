package registry

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// KeySigner signs transactions with a raw secp256k1 key for a fixed chain.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// NewKeySigner parses a hex private key, with or without 0x prefix.
func NewKeySigner(hexKey string, chainID *big.Int) (*KeySigner, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("%w: PRIVATE_KEY is not set", interfaces.ErrMissingCredential)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse private key: %w", err)
	}
	return NewKeySignerFromKey(key, chainID)
}

// NewKeySignerFromKey wraps an already parsed key.
func NewKeySignerFromKey(key *ecdsa.PrivateKey, chainID *big.Int) (*KeySigner, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil private key", interfaces.ErrMissingCredential)
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("invalid chain id %v", chainID)
	}

	// Fail at construction rather than on first use.
	if _, err := bind.NewKeyedTransactorWithChainID(key, chainID); err != nil {
		return nil, err
	}

	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).Set(chainID),
	}, nil
}

// Address returns the account derived from the key.
func (s *KeySigner) Address() common.Address {
	return s.address
}

// ChainID returns the chain the signer is bound to.
func (s *KeySigner) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// TransactOpts returns fresh transaction options bound to ctx.
func (s *KeySigner) TransactOpts(ctx context.Context) *bind.TransactOpts {
	opts, _ := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	opts.Context = ctx
	return opts
}

// Network is the single connection established at startup.
type Network struct {
	Client  *ethclient.Client
	ChainID *big.Int
	RPCURL  string
}

// Dial connects to an RPC endpoint and reads its chain id.
func Dial(ctx context.Context, rpcURL string) (*Network, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("could not dial %s: %w", rpcURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not read chain id from %s: %w", rpcURL, err)
	}

	return &Network{Client: client, ChainID: chainID, RPCURL: rpcURL}, nil
}

// Close releases the connection.
func (n *Network) Close() {
	n.Client.Close()
}
