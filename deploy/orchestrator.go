package deploy

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ruteri/agent-registry-onboarding/diag"
	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// Options configures a deployment run.
type Options struct {
	// Module scopes the artifact keys, interfaces.DefaultModuleName if empty.
	Module string

	// Parallel deploys the reputation and validation registries concurrently
	// once the identity registry is confirmed.
	Parallel bool
}

// Orchestrator deploys the registry triad in dependency order.
type Orchestrator struct {
	deployer interfaces.ContractDeployer
	log      *slog.Logger
	opts     Options
}

// NewOrchestrator creates an orchestrator deploying through deployer.
func NewOrchestrator(deployer interfaces.ContractDeployer, log *slog.Logger, opts Options) *Orchestrator {
	return &Orchestrator{deployer: deployer, log: log, opts: opts}
}

// dependents are constructed with the identity registry address.
var dependents = []interfaces.ContractName{
	interfaces.ReputationRegistryContract,
	interfaces.ValidationRegistryContract,
}

// DeployRegistrySet deploys IdentityRegistry, then ReputationRegistry and
// ValidationRegistry pointing at it.
//
// The returned record is never nil. On failure it holds whatever was deployed
// before the failing step.
func (o *Orchestrator) DeployRegistrySet(ctx context.Context) (*interfaces.DeploymentRecord, error) {
	record := interfaces.NewDeploymentRecord(o.deployer.ChainID(), o.opts.Module)
	record.Deployer = o.deployer.Deployer()

	o.log.Info("deploying registry set",
		"chainId", record.ChainID,
		"deployer", record.Deployer,
		"parallel", o.opts.Parallel)

	identity, err := o.deployStep(ctx, interfaces.IdentityRegistryContract)
	if err != nil {
		return record, err
	}
	if err := record.Add(*identity); err != nil {
		return record, err
	}
	o.log.Info("IdentityRegistry deployed", "address", identity.Address)

	if o.opts.Parallel {
		err = o.deployDependentsParallel(ctx, record, identity.Address)
	} else {
		err = o.deployDependents(ctx, record, identity.Address)
	}
	if err != nil {
		o.warnPartial(record)
		return record, err
	}

	for _, name := range dependents {
		addr, _ := record.Address(name)
		o.log.Info(string(name)+" deployed", "address", addr)
	}
	return record, nil
}

func (o *Orchestrator) deployDependents(ctx context.Context, record *interfaces.DeploymentRecord, identity interfaces.ContractAddress) error {
	for _, name := range dependents {
		deployed, err := o.deployStep(ctx, name, identity)
		if err != nil {
			return err
		}
		if err := record.Add(*deployed); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) deployDependentsParallel(ctx context.Context, record *interfaces.DeploymentRecord, identity interfaces.ContractAddress) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range dependents {
		g.Go(func() error {
			deployed, err := o.deployStep(gctx, name, identity)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			return record.Add(*deployed)
		})
	}

	return g.Wait()
}

func (o *Orchestrator) deployStep(ctx context.Context, name interfaces.ContractName, args ...interfaces.ContractAddress) (*interfaces.DeployedContract, error) {
	return diag.RunStep(ctx, o.log, "deploy"+string(name), func(ctx context.Context) (*interfaces.DeployedContract, error) {
		return o.deployer.Deploy(ctx, name, args...)
	})
}

func (o *Orchestrator) warnPartial(record *interfaces.DeploymentRecord) {
	attrs := []any{"chainId", record.ChainID}
	for name, c := range record.Contracts {
		attrs = append(attrs, string(name), c.Address.String())
	}
	o.log.Warn("registry set partially deployed, reuse these addresses when resuming", attrs...)
}
