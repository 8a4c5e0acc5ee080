package operation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vietdv277/cirrus/internal/ui"
	"github.com/vietdv277/cirrus/pkg/provider"
	"github.com/vietdv277/cirrus/pkg/types"
)

const (
	// DefaultMaxPolls bounds how many status observations one operation makes
	DefaultMaxPolls = 60
	// DefaultPollInterval is the delay between two observations
	DefaultPollInterval = time.Second
)

// Outcome is the terminal state of an execution
type Outcome int

const (
	// Done means the operation ran to completion or polling gave up
	Done Outcome = iota
	// Declined means the user refused confirmation and nothing was sent
	Declined
	// Failed means a remote call returned an error
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Declined:
		return "declined"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes how an execution ended
type Result struct {
	Outcome Outcome
	Polls   int   // number of status observations made
	Reached bool  // the target status was observed before the poll limit
	Err     error // set when Outcome is Failed
}

// Orchestrator issues lifecycle operations and polls until the instance
// converges. Executions are sequential; an Orchestrator is not safe for
// concurrent use.
type Orchestrator struct {
	client   provider.InstanceClient
	prompter provider.Prompter
	out      io.Writer
	logger   *zap.Logger
	interval time.Duration
	maxPolls int
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option allows customizing the Orchestrator
type Option func(*Orchestrator)

// WithOutput sets where progress lines are written
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) {
		o.out = w
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithPollInterval sets the delay between status observations
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.interval = d
	}
}

// WithMaxPolls sets the maximum number of status observations
func WithMaxPolls(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxPolls = n
		}
	}
}

// New creates an Orchestrator bound to a cloud client and a prompter
func New(client provider.InstanceClient, prompter provider.Prompter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		prompter: prompter,
		out:      os.Stdout,
		logger:   zap.NewNop(),
		interval: DefaultPollInterval,
		maxPolls: DefaultMaxPolls,
		sleep:    sleepContext,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Execute runs op against inst. Progress is written to the output and
// inst.State is refreshed after every successful observation. Errors are
// reported on the output and in the Result, never retried.
func (o *Orchestrator) Execute(ctx context.Context, inst *types.Instance, op Operation) Result {
	p, ok := plans[op]
	if !ok {
		return o.fail(Result{}, fmt.Errorf("unknown operation %s", op))
	}

	log := o.logger.With(
		zap.String("instance", inst.ID),
		zap.String("region", inst.Region),
		zap.Stringer("operation", op),
	)

	// Guard
	if p.confirm && !inst.IsStopped() {
		confirmed, err := o.prompter.Confirm(fmt.Sprintf("Are you sure you want to %s this instance?", op), true)
		if err != nil && !errors.Is(err, provider.ErrCancelled) {
			return o.fail(Result{}, err)
		}
		fmt.Fprintln(o.out)
		if !confirmed {
			log.Debug("operation declined")
			return Result{Outcome: Declined}
		}
	}

	header := fmt.Sprintf("%s %s", op.Progressive(), inst.DisplayName())
	fmt.Fprintln(o.out, ui.HeaderStyle.Render(header))

	// Dispatch
	if p.dispatch != nil {
		log.Debug("dispatching operation")
		if err := p.dispatch(o.client, ctx, inst); err != nil {
			return o.fail(Result{}, err)
		}
	}

	// Polling
	res := Result{Outcome: Done}
	current := ""
	for poll := 1; poll <= o.maxPolls; poll++ {
		status, err := o.client.Status(ctx, inst)
		if err != nil {
			return o.fail(res, err)
		}
		res.Polls = poll

		if status != current {
			current = status
			fmt.Fprintln(o.out, " "+current)
		}
		inst.State = types.LifecycleState(status)

		if p.reached(status) {
			res.Reached = true
			break
		}
		if poll == o.maxPolls {
			break
		}
		if err := o.sleep(ctx, o.interval); err != nil {
			return o.fail(res, err)
		}
	}

	if !res.Reached {
		log.Debug("gave up waiting for target state",
			zap.Int("polls", res.Polls),
			zap.String("last_status", current),
		)
	}

	fmt.Fprintln(o.out, ui.RunningStyle.Render("✓ "+header))
	fmt.Fprintln(o.out)
	return res
}

func (o *Orchestrator) fail(res Result, err error) Result {
	res.Outcome = Failed
	res.Err = err
	o.logger.Debug("operation failed", zap.Error(err))
	fmt.Fprintln(o.out, ui.ErrorStyle.Render("✗ "+provider.ErrorMessage(err)))
	fmt.Fprintln(o.out)
	return res
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
