package provider

import (
	"context"
	"errors"

	"github.com/vietdv277/cirrus/pkg/types"
)

// Common errors
var (
	ErrNotFound  = errors.New("resource not found")
	ErrNoStatus  = errors.New("no status reported for instance")
	ErrCancelled = errors.New("selection cancelled")
)

// InstanceClient defines the cloud operations the tool depends on. Every
// call targets a single region; lifecycle calls return once the provider
// acknowledges them and never wait for convergence.
type InstanceClient interface {
	// ListInstances returns the instances of a region in provider order
	ListInstances(ctx context.Context, region string) ([]types.Instance, error)

	// Start starts an instance
	Start(ctx context.Context, inst *types.Instance) error

	// Stop stops an instance
	Stop(ctx context.Context, inst *types.Instance) error

	// Reboot reboots an instance
	Reboot(ctx context.Context, inst *types.Instance) error

	// Status returns the composite status, "<state>" or "<state>: <health>"
	Status(ctx context.Context, inst *types.Instance) (string, error)

	// ListRegions returns every region available to the account
	ListRegions(ctx context.Context) ([]string, error)

	// SetCredentials replaces the credential context used by later calls
	SetCredentials(ctx context.Context, creds types.Credentials) error
}

// Choice is one entry of a single- or multi-selection prompt
type Choice struct {
	Title       string
	Description string
	Value       string
	Selected    bool // pre-checked in a multi-selection
}

// Prompter is the interactive capability the core depends on. Every method
// blocks until the user answers. Cancelling returns ErrCancelled.
type Prompter interface {
	SelectOne(title string, choices []Choice) (string, error)
	Confirm(message string, initial bool) (bool, error)
	MultiSelect(title string, choices []Choice) ([]string, error)
}
