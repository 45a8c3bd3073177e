package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// DeploymentsFile is the artifact name inside each chain directory.
const DeploymentsFile = "deployed_addresses.json"

// ChainDir returns the directory of a chain's artifact, relative to the deployments root.
func ChainDir(chainID uint64) string {
	return fmt.Sprintf("chain-%d", chainID)
}

// DeploymentStore reads and writes deployment artifacts laid out as
// <root>/chain-<id>/deployed_addresses.json.
type DeploymentStore struct {
	fsys fs.FS
	dir  string
}

// NewDeploymentStore creates a store rooted at dir. The directory does not
// have to exist until Save is called.
func NewDeploymentStore(dir string) *DeploymentStore {
	return &DeploymentStore{fsys: os.DirFS(dir), dir: dir}
}

// NewDeploymentStoreFS creates a read-only store over fsys. Save on such a
// store returns an error.
func NewDeploymentStoreFS(fsys fs.FS) *DeploymentStore {
	return &DeploymentStore{fsys: fsys}
}

// Load returns the raw "<Module>#<Contract>" -> address map for a chain.
func (s *DeploymentStore) Load(chainID uint64) (map[string]string, error) {
	data, err := fs.ReadFile(s.fsys, path.Join(ChainDir(chainID), DeploymentsFile))
	if err != nil {
		return nil, err
	}

	var addresses map[string]string
	if err := json.Unmarshal(data, &addresses); err != nil {
		return nil, fmt.Errorf("could not parse %s for chain %d: %w", DeploymentsFile, chainID, err)
	}
	if addresses == nil {
		// A literal null artifact.
		addresses = make(map[string]string)
	}
	return addresses, nil
}

// Lookup returns the address recorded for module#contract on a chain. Missing
// or unreadable artifacts and malformed addresses all report false.
func (s *DeploymentStore) Lookup(chainID uint64, module string, contract interfaces.ContractName) (interfaces.ContractAddress, bool) {
	addresses, err := s.Load(chainID)
	if err != nil {
		return interfaces.ContractAddress{}, false
	}

	if module == "" {
		module = interfaces.DefaultModuleName
	}

	addr, err := interfaces.NewContractAddressFromHex(addresses[interfaces.ArtifactKey(module, contract)])
	if err != nil {
		return interfaces.ContractAddress{}, false
	}
	return addr, true
}

// Save merges record into the chain's artifact. Keys already present for
// other modules or contracts are preserved.
func (s *DeploymentStore) Save(record *interfaces.DeploymentRecord) error {
	if s.dir == "" {
		return errors.New("deployment store is read-only")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	addresses, err := s.Load(record.ChainID)
	if errors.Is(err, fs.ErrNotExist) {
		addresses = make(map[string]string)
	} else if err != nil {
		return err
	}

	for key, addr := range record.AddressMap() {
		addresses[key] = strings.ToLower(addr)
	}

	data, err := json.MarshalIndent(addresses, "", "  ")
	if err != nil {
		return err
	}

	chainDir := filepath.Join(s.dir, ChainDir(record.ChainID))
	if err := os.MkdirAll(chainDir, 0755); err != nil {
		return fmt.Errorf("could not create %s: %w", chainDir, err)
	}

	return os.WriteFile(filepath.Join(chainDir, DeploymentsFile), append(data, '\n'), 0644)
}
