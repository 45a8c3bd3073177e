package interfaces

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var hexAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsHexAddress reports whether v is a 0x-prefixed 40 hex digit address.
// Unlike common.IsHexAddress the prefix is mandatory.
func IsHexAddress(v string) bool {
	return hexAddressPattern.MatchString(v)
}

// ContractAddress represents an EVM contract or wallet address.
type ContractAddress [20]byte

// NewContractAddressFromHex parses a 0x-prefixed 40 hex digit address.
func NewContractAddressFromHex(addr string) (ContractAddress, error) {
	if !IsHexAddress(addr) {
		return ContractAddress{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	var res ContractAddress
	if _, err := hex.Decode(res[:], []byte(addr[2:])); err != nil {
		return ContractAddress{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return res, nil
}

// String returns the lowercase 0x-prefixed hex representation.
func (addr ContractAddress) String() string {
	return "0x" + hex.EncodeToString(addr[:])
}

// Common converts the address to the go-ethereum representation.
func (addr ContractAddress) Common() common.Address {
	return common.Address(addr)
}

// IsZero reports whether the address is all zeroes.
func (addr ContractAddress) IsZero() bool {
	return addr == ContractAddress{}
}

func (addr ContractAddress) MarshalText() ([]byte, error) {
	return []byte(addr.String()), nil
}

func (addr *ContractAddress) UnmarshalText(text []byte) error {
	parsed, err := NewContractAddressFromHex(string(text))
	if err != nil {
		return err
	}
	*addr = parsed
	return nil
}

// ContractName is the logical name of a registry contract.
type ContractName string

const (
	IdentityRegistryContract   ContractName = "IdentityRegistry"
	ReputationRegistryContract ContractName = "ReputationRegistry"
	ValidationRegistryContract ContractName = "ValidationRegistry"
)

// DefaultModuleName is the deployment module the artifact keys are scoped by.
const DefaultModuleName = "ERC8004Module"

// ArtifactKey returns the "<Module>#<Contract>" key used in deployment artifacts.
func ArtifactKey(module string, name ContractName) string {
	return module + "#" + string(name)
}

// DeployedContract describes a single confirmed contract deployment.
type DeployedContract struct {
	Name            ContractName      `json:"name"`
	Address         ContractAddress   `json:"address"`
	TxHash          common.Hash       `json:"tx_hash"`
	BlockNumber     uint64            `json:"block_number"`
	ConstructorArgs []ContractAddress `json:"constructor_args,omitempty"`
}

// DeploymentRecord maps logical contract names to their deployments on one chain.
// Reputation and Validation entries never exist without an Identity entry.
type DeploymentRecord struct {
	ChainID   uint64                            `json:"chain_id"`
	Module    string                            `json:"module"`
	Deployer  ContractAddress                   `json:"deployer"`
	Contracts map[ContractName]DeployedContract `json:"contracts"`
}

// NewDeploymentRecord creates an empty record for a chain.
func NewDeploymentRecord(chainID uint64, module string) *DeploymentRecord {
	if module == "" {
		module = DefaultModuleName
	}
	return &DeploymentRecord{
		ChainID:   chainID,
		Module:    module,
		Contracts: make(map[ContractName]DeployedContract),
	}
}

// Add stores a deployment, enforcing the construction dependency on IdentityRegistry.
func (r *DeploymentRecord) Add(c DeployedContract) error {
	if c.Name != IdentityRegistryContract {
		if _, ok := r.Contracts[IdentityRegistryContract]; !ok {
			return fmt.Errorf("%w: %s recorded before %s", ErrDependencyMissing, c.Name, IdentityRegistryContract)
		}
	}
	if r.Contracts == nil {
		r.Contracts = make(map[ContractName]DeployedContract)
	}
	r.Contracts[c.Name] = c
	return nil
}

// Address returns the recorded address for name.
func (r *DeploymentRecord) Address(name ContractName) (ContractAddress, bool) {
	c, ok := r.Contracts[name]
	return c.Address, ok
}

// Validate checks the construction dependency invariant.
func (r *DeploymentRecord) Validate() error {
	if len(r.Contracts) == 0 {
		return nil
	}
	if _, ok := r.Contracts[IdentityRegistryContract]; !ok {
		return fmt.Errorf("%w: record for chain %d has no %s", ErrDependencyMissing, r.ChainID, IdentityRegistryContract)
	}
	return nil
}

// AddressMap renders the flat "<Module>#<Contract>" -> address mapping.
func (r *DeploymentRecord) AddressMap() map[string]string {
	out := make(map[string]string, len(r.Contracts))
	for name, c := range r.Contracts {
		out[ArtifactKey(r.Module, name)] = c.Address.String()
	}
	return out
}

// AgentIdentity is the registry's view of a registered agent.
type AgentIdentity struct {
	AgentID      *big.Int        `json:"agent_id"`
	AgentDomain  string          `json:"agent_domain"`
	AgentAddress ContractAddress `json:"agent_address"`
}

// RegistrationReceipt confirms a registration transaction was mined.
type RegistrationReceipt struct {
	TxHash      common.Hash `json:"tx_hash"`
	BlockNumber uint64      `json:"block_number"`

	// Logs emitted by the transaction, used to extract the assigned agent id.
	Logs []*types.Log `json:"-"`

	// Info is the advisory read-back of the registry, nil when it failed.
	Info *AgentIdentity `json:"info,omitempty"`
}

// Evidence is an application-defined payload stored by a storage provider.
type Evidence struct {
	AgentID   string         `json:"agentId"`
	Timestamp int64          `json:"timestamp"`
	Analysis  map[string]any `json:"analysis,omitempty"`
}

// Bytes serialises the evidence.
func (e *Evidence) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEvidence decodes serialised evidence.
func ParseEvidence(data []byte) (*Evidence, error) {
	var e Evidence
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("could not parse evidence: %w", err)
	}
	return &e, nil
}
