// Package main (cmd/register-agent) registers an agent with the ERC-8004
// identity registry.
//
// Usage:
//
//	register-agent [flags] -- <agentDomain> <agentAddress>
//
// The identity registry address is taken from --identity-registry
// (IDENTITY_REGISTRY) when it is a well-formed address, otherwise from
// <deployments-dir>/chain-<id>/deployed_addresses.json. The signer is read from
// --private-key (PRIVATE_KEY); a .env file in the working directory is loaded
// first.
//
// On success a JSON summary with the transaction hash, block number and the
// assigned agent id is printed to stdout. Missing or malformed positional
// arguments print the usage to stderr and exit with status 1.
package main
