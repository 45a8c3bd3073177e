package erc8004

import (
	"math/big"
	"testing"
	"testing/fstest"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agentRegisteredLog(t *testing.T, agentID int64, domain string, agent common.Address) types.Log {
	event := IdentityABI().Events["AgentRegistered"]
	data, err := event.Inputs.NonIndexed().Pack(domain, agent)
	require.NoError(t, err)

	return types.Log{
		Topics: []common.Hash{event.ID, common.BigToHash(big.NewInt(agentID))},
		Data:   data,
	}
}

func TestParseAgentRegistered(t *testing.T) {
	agent := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	log := agentRegisteredLog(t, 42, "https://example.com/agent.json", agent)

	ev, err := ParseAgentRegistered(log)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ev.AgentId.Int64())
	assert.Equal(t, "https://example.com/agent.json", ev.AgentDomain)
	assert.Equal(t, agent, ev.AgentAddress)
}

func TestParseAgentRegistered_OtherEvent(t *testing.T) {
	log := types.Log{
		Topics: []common.Hash{crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")), {}},
	}
	_, err := ParseAgentRegistered(log)
	assert.ErrorIs(t, err, ErrEventMismatch)

	_, err = ParseAgentRegistered(types.Log{})
	assert.ErrorIs(t, err, ErrEventMismatch)
}

func TestIdentityABI_Methods(t *testing.T) {
	parsed := IdentityABI()

	newAgent, ok := parsed.Methods["newAgent"]
	require.True(t, ok)
	assert.True(t, newAgent.IsPayable())

	resolve, ok := parsed.Methods["resolveByAddress"]
	require.True(t, ok)
	assert.True(t, resolve.IsConstant())
}

func TestArtifactSource_Load(t *testing.T) {
	artifact := `{"contractName":"ReputationRegistry","abi":` + ReputationRegistryABI + `,"bytecode":"0x6001600c60003960016000f300"}`

	tests := []struct {
		name string
		path string
	}{
		{name: "hardhat layout", path: "contracts/ReputationRegistry.sol/ReputationRegistry.json"},
		{name: "sol directory", path: "ReputationRegistry.sol/ReputationRegistry.json"},
		{name: "flat file", path: "ReputationRegistry.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewArtifactSource(fstest.MapFS{tt.path: &fstest.MapFile{Data: []byte(artifact)}})

			a, err := src.Load("ReputationRegistry")
			require.NoError(t, err)
			assert.Equal(t, "ReputationRegistry", a.ContractName)
			require.Len(t, a.ABI.Constructor.Inputs, 1)
			assert.Equal(t, abi.AddressTy, a.ABI.Constructor.Inputs[0].Type.T)

			code, err := a.Code()
			require.NoError(t, err)
			assert.Len(t, code, 13)
		})
	}
}

func TestArtifactSource_Errors(t *testing.T) {
	src := NewArtifactSource(fstest.MapFS{
		"Broken.json": &fstest.MapFile{Data: []byte("{not json")},
		"Empty.json":  &fstest.MapFile{Data: []byte(`{"contractName":"Empty","abi":[],"bytecode":"0x"}`)},
	})

	_, err := src.Load("Missing")
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = src.Load("Broken")
	assert.Error(t, err)

	a, err := src.Load("Empty")
	require.NoError(t, err)
	_, err = a.Code()
	assert.Error(t, err)
}
