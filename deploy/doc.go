// Package deploy deploys the ERC-8004 registry set.
//
// The identity registry is deployed first; the reputation and validation
// registries take its address as their only constructor argument and are
// deployed after it, one after the other or concurrently with
// Options.Parallel. Every deployment is confirmed before the next step
// starts and each step goes through diag.RunStep, so failures are logged
// with their decomposed chain error.
//
// A failed run returns the partial DeploymentRecord next to the error so the
// already deployed contracts can be reused.
package deploy
