// Package interfaces defines core interfaces and types for the agent
// onboarding toolkit, separating interface definitions from implementations.
//
// # Registry Interfaces
//
// IdentityRegistry: the subset of the on-chain identity registry used during
// onboarding (agent registration, resolution by address, event decoding).
//
// RegistryFactory: creates IdentityRegistry clients for contract addresses.
//
// ContractDeployer: deploys a named registry contract and waits until the
// deployment is confirmed on-chain.
//
// Signer: the capability a network connection must provide to send
// transactions. It is validated once at construction time.
//
// # Storage Interfaces
//
// StorageBackend: content-addressed storage for agent evidence across
// multiple backend types (file, IPFS, Pinata, S3).
//
// # Domain Types
//
//   - ContractAddress: 20-byte EVM address
//   - DeploymentRecord: logical contract name to address mapping per chain
//   - AgentIdentity: agent id, domain and wallet address
//   - RegistrationReceipt: transaction hash and mined block of a registration
//   - Evidence: opaque JSON payload stored by a storage provider
package interfaces
