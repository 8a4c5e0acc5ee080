package operation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietdv277/cirrus/pkg/provider"
	"github.com/vietdv277/cirrus/pkg/types"
)

// fakeClient replays a scripted sequence of statuses and records calls.
type fakeClient struct {
	statuses  []string
	statusErr error
	opErr     error
	calls     []string
	polls     int
}

func (f *fakeClient) ListInstances(ctx context.Context, region string) ([]types.Instance, error) {
	return nil, nil
}

func (f *fakeClient) Start(ctx context.Context, inst *types.Instance) error {
	f.calls = append(f.calls, "start")
	return f.opErr
}

func (f *fakeClient) Stop(ctx context.Context, inst *types.Instance) error {
	f.calls = append(f.calls, "stop")
	return f.opErr
}

func (f *fakeClient) Reboot(ctx context.Context, inst *types.Instance) error {
	f.calls = append(f.calls, "reboot")
	return f.opErr
}

func (f *fakeClient) Status(ctx context.Context, inst *types.Instance) (string, error) {
	if f.statusErr != nil && f.polls >= len(f.statuses) {
		return "", f.statusErr
	}
	idx := f.polls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.polls++
	return f.statuses[idx], nil
}

func (f *fakeClient) ListRegions(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeClient) SetCredentials(ctx context.Context, creds types.Credentials) error {
	return nil
}

type fakePrompter struct {
	answer   bool
	err      error
	confirms int
}

func (p *fakePrompter) SelectOne(title string, choices []provider.Choice) (string, error) {
	return "", provider.ErrCancelled
}

func (p *fakePrompter) Confirm(message string, initial bool) (bool, error) {
	p.confirms++
	return p.answer, p.err
}

func (p *fakePrompter) MultiSelect(title string, choices []provider.Choice) ([]string, error) {
	return nil, provider.ErrCancelled
}

func newTestOrchestrator(client *fakeClient, prompter *fakePrompter, out *bytes.Buffer) (*Orchestrator, *int) {
	sleeps := 0
	o := New(client, prompter, WithOutput(out))
	o.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}
	return o, &sleeps
}

func TestExecute_StartConvergesOnThirdObservation(t *testing.T) {
	client := &fakeClient{statuses: []string{"pending", "running: initializing", "running: ok"}}
	prompter := &fakePrompter{}
	var out bytes.Buffer
	o, sleeps := newTestOrchestrator(client, prompter, &out)

	inst := &types.Instance{ID: "i-1", Name: "web", State: "pending"}
	res := o.Execute(context.Background(), inst, Start)

	assert.Equal(t, Done, res.Outcome)
	assert.True(t, res.Reached)
	assert.Equal(t, 3, res.Polls)
	assert.Equal(t, 2, *sleeps)
	assert.Equal(t, "running", inst.State)
	assert.Equal(t, []string{"start"}, client.calls)
	assert.Zero(t, prompter.confirms, "start must not ask for confirmation")
	assert.Contains(t, out.String(), " running: initializing\n")
}

func TestExecute_ConfirmationGate(t *testing.T) {
	tests := []struct {
		name        string
		op          Operation
		state       string
		answer      bool
		wantConfirm int
		wantCalls   []string
		wantOutcome Outcome
	}{
		{"stop running declined", Stop, "running", false, 1, nil, Declined},
		{"reboot running declined", Reboot, "running", false, 1, nil, Declined},
		{"stop running accepted", Stop, "running", true, 1, []string{"stop"}, Done},
		{"reboot pending accepted", Reboot, "pending", true, 1, []string{"reboot"}, Done},
		{"stop already stopped", Stop, "stopped", false, 0, []string{"stop"}, Done},
		{"reboot stopped", Reboot, "stopped", false, 0, []string{"reboot"}, Done},
		{"start running", Start, "running", false, 0, []string{"start"}, Done},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{statuses: []string{"stopped", "running: ok"}}
			prompter := &fakePrompter{answer: tt.answer}
			var out bytes.Buffer
			o, _ := newTestOrchestrator(client, prompter, &out)

			res := o.Execute(context.Background(), &types.Instance{ID: "i-1", State: tt.state}, tt.op)

			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantConfirm, prompter.confirms)
			assert.Equal(t, tt.wantCalls, client.calls)
			if tt.wantOutcome == Declined {
				assert.Zero(t, client.polls, "declined operations must not poll")
			}
		})
	}
}

func TestExecute_CancelledConfirmationIsDecline(t *testing.T) {
	client := &fakeClient{statuses: []string{"running: ok"}}
	prompter := &fakePrompter{err: provider.ErrCancelled}
	var out bytes.Buffer
	o, _ := newTestOrchestrator(client, prompter, &out)

	res := o.Execute(context.Background(), &types.Instance{ID: "i-1", State: "running"}, Stop)

	assert.Equal(t, Declined, res.Outcome)
	assert.Empty(t, client.calls)
}

func TestExecute_RefreshNeverMutates(t *testing.T) {
	client := &fakeClient{statuses: []string{"stopping"}}
	var out bytes.Buffer
	o, sleeps := newTestOrchestrator(client, &fakePrompter{}, &out)

	inst := &types.Instance{ID: "i-1", State: "running"}
	res := o.Execute(context.Background(), inst, Refresh)

	assert.Equal(t, Done, res.Outcome)
	assert.Equal(t, 1, res.Polls)
	assert.Zero(t, *sleeps)
	assert.Empty(t, client.calls)
	assert.Equal(t, "stopping", inst.State)
}

func TestExecute_TimesOutSilentlyAfterMaxPolls(t *testing.T) {
	client := &fakeClient{statuses: []string{"stopping"}}
	var out bytes.Buffer
	o, sleeps := newTestOrchestrator(client, &fakePrompter{answer: true}, &out)

	inst := &types.Instance{ID: "i-1", State: "running"}
	res := o.Execute(context.Background(), inst, Stop)

	assert.Equal(t, Done, res.Outcome)
	assert.False(t, res.Reached)
	assert.NoError(t, res.Err)
	assert.Equal(t, DefaultMaxPolls, res.Polls)
	assert.Equal(t, DefaultMaxPolls, client.polls)
	assert.Equal(t, DefaultMaxPolls-1, *sleeps)
	assert.Equal(t, "stopping", inst.State)
}

func TestExecute_DeduplicatesStatusLines(t *testing.T) {
	client := &fakeClient{statuses: []string{
		"stopping", "stopping", "stopping", "stopped",
	}}
	var out bytes.Buffer
	o, _ := newTestOrchestrator(client, &fakePrompter{answer: true}, &out)

	res := o.Execute(context.Background(), &types.Instance{ID: "i-1", State: "running"}, Stop)

	require.Equal(t, Done, res.Outcome)
	assert.Equal(t, 4, res.Polls)
	assert.Equal(t, 1, strings.Count(out.String(), " stopping\n"))
	assert.Equal(t, 1, strings.Count(out.String(), " stopped\n"))
}

func TestExecute_RebootWaitsForHealthyRunning(t *testing.T) {
	client := &fakeClient{statuses: []string{
		"running: ok", "running: impaired", "running: initializing", "running: ok",
	}}
	var out bytes.Buffer
	o, _ := newTestOrchestrator(client, &fakePrompter{answer: true}, &out)

	res := o.Execute(context.Background(), &types.Instance{ID: "i-1", State: "running"}, Reboot)

	// The first observation already matches: reboot shares the start target.
	assert.Equal(t, 1, res.Polls)
	assert.True(t, res.Reached)
	assert.Equal(t, []string{"reboot"}, client.calls)
}

func TestExecute_DispatchFailure(t *testing.T) {
	client := &fakeClient{statuses: []string{"running: ok"}, opErr: errors.New("IncorrectInstanceState")}
	var out bytes.Buffer
	o, _ := newTestOrchestrator(client, &fakePrompter{}, &out)

	inst := &types.Instance{ID: "i-1", State: "stopping"}
	res := o.Execute(context.Background(), inst, Start)

	assert.Equal(t, Failed, res.Outcome)
	assert.EqualError(t, res.Err, "IncorrectInstanceState")
	assert.Zero(t, client.polls)
	assert.Equal(t, "stopping", inst.State, "state must not change without an observation")
	assert.Contains(t, out.String(), "IncorrectInstanceState")
}

func TestExecute_PollingFailureKeepsLastObservedState(t *testing.T) {
	client := &fakeClient{
		statuses:  []string{"pending"},
		statusErr: errors.New("RequestLimitExceeded"),
	}
	var out bytes.Buffer
	o, _ := newTestOrchestrator(client, &fakePrompter{}, &out)

	inst := &types.Instance{ID: "i-1", State: "stopped"}
	res := o.Execute(context.Background(), inst, Start)

	assert.Equal(t, Failed, res.Outcome)
	assert.Equal(t, 1, res.Polls)
	assert.Equal(t, "pending", inst.State)
}

func TestExecute_ContextCancelledWhileWaiting(t *testing.T) {
	client := &fakeClient{statuses: []string{"pending"}}
	var out bytes.Buffer
	o := New(client, &fakePrompter{}, WithOutput(&out), WithPollInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := o.Execute(ctx, &types.Instance{ID: "i-1", State: "stopped"}, Start)

	assert.Equal(t, Failed, res.Outcome)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestParse(t *testing.T) {
	for _, op := range All() {
		got, err := Parse(strings.ToUpper(op.String()))
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}

	_, err := Parse("terminate")
	assert.Error(t, err)
}

func TestOperationLabels(t *testing.T) {
	assert.Equal(t, "Refresh state", Refresh.Title())
	assert.Equal(t, "Reboot instance", Reboot.Title())
	assert.Equal(t, "Stopping", Stop.Progressive())
}
