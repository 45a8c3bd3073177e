package registry

import (
	"fmt"
	"log/slog"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// AddressResolver determines the identity registry address for a chain.
type AddressResolver struct {
	store  *DeploymentStore
	module string
	log    *slog.Logger
}

// NewAddressResolver creates a resolver reading artifacts from store.
func NewAddressResolver(store *DeploymentStore, log *slog.Logger) *AddressResolver {
	return &AddressResolver{store: store, module: interfaces.DefaultModuleName, log: log}
}

// WithModule changes the deployment module the artifact lookup is scoped by.
func (r *AddressResolver) WithModule(module string) *AddressResolver {
	r.module = module
	return r
}

// ResolveIdentityRegistryAddress returns the override when it is a well-formed
// address, otherwise the IdentityRegistry entry of the chain's deployment
// artifact, otherwise ErrIdentityRegistryNotFound.
//
// The artifact is not read when the override is used. A non-empty malformed
// override is logged and ignored.
func (r *AddressResolver) ResolveIdentityRegistryAddress(chainID uint64, override string) (interfaces.ContractAddress, error) {
	if override != "" {
		addr, err := interfaces.NewContractAddressFromHex(override)
		if err == nil {
			r.log.Debug("using identity registry override", "address", addr)
			return addr, nil
		}
		r.log.Warn("ignoring malformed identity registry override", "value", override)
	}

	if addr, found := r.store.Lookup(chainID, r.module, interfaces.IdentityRegistryContract); found {
		r.log.Debug("using identity registry from deployment artifact", "address", addr, "chainId", chainID)
		return addr, nil
	}

	return interfaces.ContractAddress{}, fmt.Errorf("%w for chain %d: set IDENTITY_REGISTRY or deploy the registry set", interfaces.ErrIdentityRegistryNotFound, chainID)
}

// ValidateOverride returns ErrInvalidAddress for a non-empty override that is not
// a well-formed address.
func ValidateOverride(override string) error {
	if override == "" {
		return nil
	}
	_, err := interfaces.NewContractAddressFromHex(override)
	return err
}
