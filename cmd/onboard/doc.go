// Package main (cmd/onboard) runs the complete onboarding of the signing
// account as an agent:
//
//  1. log the masked environment overview
//  2. connect and derive the signer from PRIVATE_KEY
//  3. resolve the identity registry and register the signer for --agent-domain
//  4. extract the assigned agent id from the AgentRegistered event
//  5. store an evidence document when a storage backend is configured
//
// Evidence goes to Pinata when PINATA_JWT is set and to every --storage URI.
// Each remote step is logged with its duration, and failures are logged with
// the decomposed chain error before the process exits with status 1.
package main
