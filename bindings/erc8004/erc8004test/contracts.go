// Package erc8004test provides minimal hand-assembled contracts and a
// simulated chain for exercising the onboarding flow without a Solidity
// toolchain.
package erc8004test

import (
	"encoding/json"
	"fmt"
	"testing/fstest"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ruteri/agent-registry-onboarding/bindings/erc8004"
)

// deployer returns init code that copies runtime into memory and returns it.
// Layout: PUSH1 len PUSH1 0x0c PUSH1 0 CODECOPY PUSH1 len PUSH1 0 RETURN <runtime>
func deployer(runtime []byte) []byte {
	if len(runtime) > 0xff {
		panic("runtime too long for PUSH1 length")
	}
	n := byte(len(runtime))
	init := []byte{0x60, n, 0x60, 0x0c, 0x60, 0x00, 0x39, 0x60, n, 0x60, 0x00, 0xf3}
	return append(init, runtime...)
}

// AcceptAllBytecode deploys a contract whose runtime is a single STOP: every
// call, with or without value, succeeds and returns no data.
func AcceptAllBytecode() []byte {
	return deployer([]byte{0x00})
}

// RevertingBytecode deploys a contract that reverts every call with Error(reason).
func RevertingBytecode(reason string) []byte {
	stringTy, _ := abi.NewType("string", "", nil)
	packed, err := abi.Arguments{{Type: stringTy}}.Pack(reason)
	if err != nil {
		panic(err)
	}
	payload := append(crypto.Keccak256([]byte("Error(string)"))[:4], packed...)
	if len(payload) > 0xff-0x0c {
		panic("revert reason too long")
	}

	n := byte(len(payload))
	runtime := []byte{0x60, n, 0x60, 0x0c, 0x60, 0x00, 0x39, 0x60, n, 0x60, 0x00, 0xfd}
	return deployer(append(runtime, payload...))
}

// RevertingRuntimeCode returns the runtime installed by RevertingBytecode.
func RevertingRuntimeCode(reason string) []byte {
	return RevertingBytecode(reason)[0x0c:]
}

// ArtifactJSON renders a Hardhat-style artifact.
func ArtifactJSON(name, abiJSON string, bytecode []byte) []byte {
	data, err := json.Marshal(map[string]any{
		"_format":      "hh-sol-artifact-1",
		"contractName": name,
		"abi":          json.RawMessage(abiJSON),
		"bytecode":     hexutil.Encode(bytecode),
	})
	if err != nil {
		panic(err)
	}
	return data
}

// RegistryArtifacts returns a Hardhat artifacts tree for the three registries,
// all backed by AcceptAllBytecode.
func RegistryArtifacts() fstest.MapFS {
	return RegistryArtifactsWith(map[string][]byte{})
}

// RegistryArtifactsWith is RegistryArtifacts with per-contract bytecode overrides.
func RegistryArtifactsWith(code map[string][]byte) fstest.MapFS {
	abis := map[string]string{
		"IdentityRegistry":   erc8004.IdentityRegistryABI,
		"ReputationRegistry": erc8004.ReputationRegistryABI,
		"ValidationRegistry": erc8004.ValidationRegistryABI,
	}

	fsys := fstest.MapFS{}
	for name, def := range abis {
		bytecode, ok := code[name]
		if !ok {
			bytecode = AcceptAllBytecode()
		}
		fsys[fmt.Sprintf("contracts/%s.sol/%s.json", name, name)] = &fstest.MapFile{
			Data: ArtifactJSON(name, def, bytecode),
		}
	}
	return fsys
}
