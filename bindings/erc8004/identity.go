package erc8004

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrEventMismatch is returned when a log is not an AgentRegistered event.
var ErrEventMismatch = errors.New("log is not an AgentRegistered event")

// AgentInfo mirrors the registry's AgentInfo struct.
type AgentInfo struct {
	AgentId      *big.Int
	AgentDomain  string
	AgentAddress common.Address
}

// AgentRegistered is the event emitted by newAgent.
type AgentRegistered struct {
	AgentId      *big.Int
	AgentDomain  string
	AgentAddress common.Address
	Raw          types.Log
}

var identityABI = mustParseABI(IdentityRegistryABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// IdentityABI returns the parsed identity registry ABI.
func IdentityABI() abi.ABI {
	return identityABI
}

// IdentityRegistry is a Go binding around the identity registry contract.
type IdentityRegistry struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewIdentityRegistry binds an identity registry deployed at address.
func NewIdentityRegistry(address common.Address, backend bind.ContractBackend) (*IdentityRegistry, error) {
	contract := bind.NewBoundContract(address, identityABI, backend, backend, backend)
	return &IdentityRegistry{address: address, contract: contract}, nil
}

// Address returns the bound contract address.
func (r *IdentityRegistry) Address() common.Address {
	return r.address
}

// NewAgent is a paid mutator transaction binding the contract method newAgent.
func (r *IdentityRegistry) NewAgent(opts *bind.TransactOpts, agentDomain string, agentAddress common.Address) (*types.Transaction, error) {
	return r.contract.Transact(opts, "newAgent", agentDomain, agentAddress)
}

// ResolveByAddress is a free data retrieval call binding the contract method resolveByAddress.
func (r *IdentityRegistry) ResolveByAddress(opts *bind.CallOpts, agentAddress common.Address) (AgentInfo, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "resolveByAddress", agentAddress)
	if err != nil {
		return AgentInfo{}, err
	}

	return *abi.ConvertType(out[0], new(AgentInfo)).(*AgentInfo), nil
}

// RegistrationFee is a free data retrieval call binding the contract constant REGISTRATION_FEE.
func (r *IdentityRegistry) RegistrationFee(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := r.contract.Call(opts, &out, "REGISTRATION_FEE")
	if err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// ParseAgentRegistered decodes an AgentRegistered log.
func (r *IdentityRegistry) ParseAgentRegistered(log types.Log) (*AgentRegistered, error) {
	return ParseAgentRegistered(log)
}

// ParseAgentRegistered decodes an AgentRegistered log without a bound contract.
func ParseAgentRegistered(log types.Log) (*AgentRegistered, error) {
	event := identityABI.Events["AgentRegistered"]
	if len(log.Topics) < 2 || log.Topics[0] != event.ID {
		return nil, ErrEventMismatch
	}

	out := new(AgentRegistered)
	if err := identityABI.UnpackIntoInterface(out, "AgentRegistered", log.Data); err != nil {
		return nil, err
	}

	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopics(out, indexed, log.Topics[1:]); err != nil {
		return nil, err
	}

	out.Raw = log
	return out, nil
}
