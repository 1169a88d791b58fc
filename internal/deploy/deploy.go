package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/rflorenc/azure-search-workbench/datasource"
	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/index"
	"github.com/rflorenc/azure-search-workbench/indexer"
	"github.com/rflorenc/azure-search-workbench/search"
	"github.com/rflorenc/azure-search-workbench/skills"
)

// Action is what Apply will do with one resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update" // exists; recreated
)

// Step is one planned change.
type Step struct {
	Resource
	Action Action
}

// Plan is the ordered list of changes Apply will make.
type Plan struct {
	Steps []Step
}

// Counts returns the number of creates and updates in the plan.
func (p *Plan) Counts() (create, update int) {
	for _, s := range p.Steps {
		if s.Action == ActionCreate {
			create++
		} else {
			update++
		}
	}
	return create, update
}

// Result tallies what a workflow did.
type Result struct {
	Created int
	Updated int
	Deleted int
	Skipped int
	Failed  int
}

type validator interface{ Validate() error }

// Preflight validates every resource in m and checks the service for the
// ones that already exist. Nothing is written.
func Preflight(ctx context.Context, svc *search.Service, m *Manifest, logger func(string)) (*Plan, error) {
	log := logger

	for _, r := range m.Resources {
		if v, ok := r.Object.(validator); ok {
			if err := v.Validate(); err != nil {
				return nil, fmt.Errorf("%s (%s): %w", r, r.Source, err)
			}
		}
	}

	log("Checking service connectivity...")
	if _, err := svc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("service connection failed: %w", err)
	}

	plan := &Plan{}
	for _, r := range m.Resources {
		step := Step{Resource: r, Action: ActionCreate}
		_, err := svc.Raw(ctx, r.Type, r.Name())
		switch {
		case err == nil:
			step.Action = ActionUpdate
			log(fmt.Sprintf("  %s: exists, will be recreated", r))
		case faults.IsNotFound(err):
			log(fmt.Sprintf("  %s: will be created", r))
		default:
			return nil, fmt.Errorf("checking %s: %w", r, err)
		}
		plan.Steps = append(plan.Steps, step)
	}

	create, update := plan.Counts()
	log(fmt.Sprintf("Preflight complete: %d to create, %d to update", create, update))
	return plan, nil
}

// Apply executes plan in order. A failed step is logged and counted and the
// remaining steps still run; the failures are returned joined.
func Apply(ctx context.Context, svc *search.Service, plan *Plan, logger func(string)) (*Result, error) {
	log := logger
	res := &Result{}
	var errs []error

	for _, s := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return res, errors.Join(append(errs, err)...)
		}
		if s.Action == ActionUpdate && s.Type.Name == "index" {
			log(fmt.Sprintf("  WARNING: recreating %s drops its documents", s.Resource))
		}
		if err := applyStep(ctx, svc, s); err != nil {
			log(fmt.Sprintf("  FAIL %s: %v", s.Resource, err))
			errs = append(errs, fmt.Errorf("%s %s: %w", s.Action, s.Resource, err))
			res.Failed++
			continue
		}
		if s.Action == ActionUpdate {
			log(fmt.Sprintf("  UPDATED %s", s.Resource))
			res.Updated++
		} else {
			log(fmt.Sprintf("  CREATED %s", s.Resource))
			res.Created++
		}
	}

	log(fmt.Sprintf("Apply complete: %d created, %d updated, %d failed", res.Created, res.Updated, res.Failed))
	return res, errors.Join(errs...)
}

func applyStep(ctx context.Context, svc *search.Service, s Step) error {
	switch obj := s.Object.(type) {
	case *datasource.DataSource:
		return put(ctx, svc.DataSources, obj, s.Action)
	case *index.Index:
		return put(ctx, svc.Indexes.Collection, obj, s.Action)
	case *skills.Skillset:
		return put(ctx, svc.Skillsets, obj, s.Action)
	case *indexer.Indexer:
		return put(ctx, svc.Indexers.Collection, obj, s.Action)
	}
	return faults.Validationf("cannot apply %T", s.Object)
}

func put[T search.Resource](ctx context.Context, c *search.Collection[T], r T, a Action) error {
	if a == ActionUpdate {
		return c.Update(ctx, r)
	}
	return c.Create(ctx, r)
}
