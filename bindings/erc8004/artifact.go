package erc8004

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrArtifactNotFound is returned when no compiled artifact exists for a contract.
var ErrArtifactNotFound = errors.New("contract artifact not found")

// Artifact is a compiled contract as produced by Hardhat
// (artifacts/contracts/<Name>.sol/<Name>.json).
type Artifact struct {
	ContractName string          `json:"contractName"`
	RawABI       json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`

	ABI abi.ABI `json:"-"`
}

// Code returns the decoded creation bytecode.
func (a *Artifact) Code() ([]byte, error) {
	code, err := hexutil.Decode(a.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode for %s: %w", a.ContractName, err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("empty bytecode for %s", a.ContractName)
	}
	return code, nil
}

// ArtifactSource loads compiled contract artifacts from a Hardhat artifacts tree.
type ArtifactSource struct {
	fsys fs.FS
}

// NewArtifactSource creates a source reading from fsys, usually os.DirFS("artifacts").
func NewArtifactSource(fsys fs.FS) *ArtifactSource {
	return &ArtifactSource{fsys: fsys}
}

// Load returns the artifact for a contract, trying the Hardhat layout first
// and then flat <Name>.json files.
func (s *ArtifactSource) Load(name string) (*Artifact, error) {
	candidates := []string{
		path.Join("contracts", name+".sol", name+".json"),
		path.Join(name+".sol", name+".json"),
		name + ".json",
	}

	for _, p := range candidates {
		data, err := fs.ReadFile(s.fsys, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("could not read artifact %s: %w", p, err)
		}
		return ParseArtifact(data)
	}

	return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
}

// ParseArtifact decodes a Hardhat artifact and its ABI.
func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("could not parse artifact: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(string(a.RawABI)))
	if err != nil {
		return nil, fmt.Errorf("could not parse abi of %s: %w", a.ContractName, err)
	}
	a.ABI = parsed
	return &a, nil
}
