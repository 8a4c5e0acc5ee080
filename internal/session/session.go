// Package session implements the interactive region, instance and
// operation menus.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vietdv277/cirrus/internal/operation"
	"github.com/vietdv277/cirrus/internal/regions"
	"github.com/vietdv277/cirrus/internal/ui"
	"github.com/vietdv277/cirrus/pkg/provider"
	"github.com/vietdv277/cirrus/pkg/types"
)

// AddRegionsChoice is the region menu entry that opens reconfiguration
const AddRegionsChoice = "[add regions]"

// Session drives the interactive menus. It is not safe for concurrent use.
type Session struct {
	client       provider.InstanceClient
	prompter     provider.Prompter
	store        *regions.Store
	orchestrator *operation.Orchestrator
	regions      regions.Set
	out          io.Writer
	logger       *zap.Logger
}

// Option allows customizing the Session
type Option func(*Session)

// WithOutput sets where menu headers and messages are written
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithOrchestrator replaces the default orchestrator
func WithOrchestrator(o *operation.Orchestrator) Option {
	return func(s *Session) {
		s.orchestrator = o
	}
}

// New creates a Session
func New(client provider.InstanceClient, prompter provider.Prompter, store *regions.Store, opts ...Option) *Session {
	s := &Session{
		client:   client,
		prompter: prompter,
		store:    store,
		out:      os.Stdout,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.orchestrator == nil {
		s.orchestrator = operation.New(client, prompter,
			operation.WithOutput(s.out),
			operation.WithLogger(s.logger),
		)
	}

	return s
}

// Regions returns the active region set
func (s *Session) Regions() regions.Set {
	return s.regions
}

// Run loads the region set and loops over the menus until the user
// confirms they want to exit. Errors inside a region are printed and the
// loop resumes; only prompt failures end the session.
func (s *Session) Run(ctx context.Context) error {
	set, err := s.store.Load()
	if err != nil {
		return err
	}
	s.regions = set

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		region, err := s.chooseRegion()
		if errors.Is(err, provider.ErrCancelled) {
			exit, err := s.prompter.Confirm("Are you sure you want to exit?", true)
			if err != nil && !errors.Is(err, provider.ErrCancelled) {
				return err
			}
			if exit {
				return nil
			}
			fmt.Fprintln(s.out)
			continue
		}
		if err != nil {
			return err
		}

		if region == AddRegionsChoice {
			s.configureRegions(ctx)
			continue
		}

		if err := s.browseRegion(ctx, region); err != nil {
			if isPromptFailure(err) {
				return err
			}
			s.printError(err)
		}
	}
}

func (s *Session) chooseRegion() (string, error) {
	choices := make([]provider.Choice, 0, len(s.regions)+1)
	for _, r := range s.regions {
		choices = append(choices, provider.Choice{Title: r, Value: r})
	}
	choices = append(choices, provider.Choice{Title: AddRegionsChoice, Value: AddRegionsChoice})

	region, err := s.prompter.SelectOne("Select a region:", choices)
	fmt.Fprintln(s.out)
	return region, err
}

func (s *Session) configureRegions(ctx context.Context) {
	candidates, err := s.client.ListRegions(ctx)
	if err != nil {
		s.printError(err)
		return
	}

	set, err := s.store.Reconfigure(s.prompter, candidates, s.regions)
	if errors.Is(err, provider.ErrCancelled) {
		return
	}
	s.regions = set
	if err != nil {
		s.printError(err)
		return
	}

	s.logger.Debug("regions reconfigured", zap.Strings("regions", set))
}

// browseRegion lists a region's instances and runs the instance and
// operation menus until the user backs out of the instance menu.
func (s *Session) browseRegion(ctx context.Context, region string) error {
	for {
		instances, err := s.client.ListInstances(ctx, region)
		if err != nil {
			return err
		}

		if len(instances) == 0 {
			fmt.Fprintln(s.out, ui.WarningStyle.Render("There are no instances in this region."))
			fmt.Fprintln(s.out)
			s.regions, err = s.store.Remove(s.regions, region)
			return err
		}

		SortInstances(instances)

		inst, err := s.chooseInstance(region, instances)
		if errors.Is(err, provider.ErrCancelled) {
			return nil
		}
		if err != nil {
			return promptFailure{err}
		}

		if err := s.operateOn(ctx, inst); err != nil {
			return err
		}
	}
}

func (s *Session) chooseInstance(region string, instances []types.Instance) (*types.Instance, error) {
	choices := make([]provider.Choice, len(instances))
	for i := range instances {
		choices[i] = provider.Choice{
			Title:       InstanceTitle(&instances[i]),
			Description: instances[i].ID,
			Value:       instances[i].ID,
		}
	}

	id, err := s.prompter.SelectOne(fmt.Sprintf("Select an %s instance:", region), choices)
	fmt.Fprintln(s.out)
	if err != nil {
		return nil, err
	}

	for i := range instances {
		if instances[i].ID == id {
			return &instances[i], nil
		}
	}
	return nil, fmt.Errorf("%w: instance %s", provider.ErrNotFound, id)
}

// operateOn repeats the operation menu for inst until the user backs out
func (s *Session) operateOn(ctx context.Context, inst *types.Instance) error {
	for {
		op, err := s.chooseOperation(inst)
		if errors.Is(err, provider.ErrCancelled) {
			return nil
		}
		if err != nil {
			return promptFailure{err}
		}

		res := s.orchestrator.Execute(ctx, inst, op)
		s.logger.Debug("operation finished",
			zap.String("instance", inst.ID),
			zap.Stringer("operation", op),
			zap.Stringer("outcome", res.Outcome),
			zap.Int("polls", res.Polls),
		)
		fmt.Fprintln(s.out)

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *Session) chooseOperation(inst *types.Instance) (operation.Operation, error) {
	fmt.Fprintf(s.out, "%s is currently %s\n", inst.DisplayName(), strings.ToUpper(inst.State))

	ops := operation.All()
	choices := make([]provider.Choice, len(ops))
	for i, op := range ops {
		choices[i] = provider.Choice{Title: op.Title(), Value: op.String()}
	}

	value, err := s.prompter.SelectOne("Would you like to:", choices)
	fmt.Fprintln(s.out)
	if err != nil {
		return 0, err
	}
	return operation.Parse(value)
}

func (s *Session) printError(err error) {
	s.logger.Debug("session error", zap.Error(err))
	fmt.Fprintln(s.out, ui.ErrorStyle.Render(provider.ErrorMessage(err)))
}

// promptFailure marks errors raised by the prompter itself, which end the
// session instead of being reported.
type promptFailure struct {
	err error
}

func (p promptFailure) Error() string { return p.err.Error() }
func (p promptFailure) Unwrap() error { return p.err }

func isPromptFailure(err error) bool {
	var pf promptFailure
	return errors.As(err, &pf)
}

// SortInstances orders instances by state, then case-insensitively by name
func SortInstances(instances []types.Instance) {
	sort.SliceStable(instances, func(i, j int) bool {
		if instances[i].State != instances[j].State {
			return instances[i].State < instances[j].State
		}
		return strings.ToLower(instances[i].Name) < strings.ToLower(instances[j].Name)
	})
}

// InstanceTitle renders an instance as "name (state)"
func InstanceTitle(inst *types.Instance) string {
	return fmt.Sprintf("%s (%s)", inst.DisplayName(), inst.State)
}
