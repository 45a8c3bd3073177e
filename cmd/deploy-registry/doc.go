// Package main (cmd/deploy-registry) deploys the ERC-8004 registry set:
// IdentityRegistry first, then ReputationRegistry and ValidationRegistry
// constructed with the identity registry address.
//
// Contract ABIs and bytecode are read from Hardhat artifacts under
// --artifacts-dir. The resulting addresses are merged into
// <deployments-dir>/chain-<id>/deployed_addresses.json, where register-agent
// and onboard find them, and a JSON summary is printed to stdout.
//
// A failed run still saves whatever was deployed and logs the addresses.
package main
