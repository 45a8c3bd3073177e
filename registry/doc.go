// Package registry locates and talks to the ERC-8004 identity registry.
//
// It covers everything needed after the registry triad is deployed:
//
//   - DeploymentStore reads and writes the per-chain deployed_addresses.json
//     artifacts produced by a deployment run.
//   - AddressResolver picks the identity registry address, preferring an
//     explicit override over the artifact.
//   - OnchainIdentityClient implements interfaces.IdentityRegistry over the
//     contract bindings in bindings/erc8004, and RegistryFactory creates
//     clients for arbitrary addresses.
//   - Transactor registers an agent: it validates inputs, submits newAgent
//     with the registration fee, waits for one confirmation and reads the
//     agent record back.
//
// # Transaction Operations
//
// State-modifying calls need a signer. Clients created by NewOnchainIdentityClient
// are read-only until SetSigner is called; RegistryFactory sets the signer it
// was constructed with on every client it hands out.
//
// # Usage Example
//
//	network, err := registry.Dial(ctx, rpcURL)
//	if err != nil {
//	    return err
//	}
//	signer, err := registry.NewKeySigner(os.Getenv("PRIVATE_KEY"), network.ChainID)
//	if err != nil {
//	    return err
//	}
//
//	resolver := registry.NewAddressResolver(registry.NewDeploymentStore("ignition/deployments"), log)
//	identity, err := resolver.ResolveIdentityRegistryAddress(network.ChainID.Uint64(), os.Getenv("IDENTITY_REGISTRY"))
//	if err != nil {
//	    return err
//	}
//
//	transactor := registry.NewTransactor(registry.NewRegistryFactory(network.Client, signer), network.Client, log)
//	receipt, err := transactor.RegisterAgent(ctx, identity, "agent.example.com", signer.Address().Hex(), registry.RegistrationFee())
package registry
