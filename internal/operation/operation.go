package operation

import (
	"context"
	"fmt"
	"strings"

	"github.com/vietdv277/cirrus/pkg/provider"
	"github.com/vietdv277/cirrus/pkg/types"
)

// Operation is a lifecycle action that can be applied to an instance
type Operation int

const (
	Refresh Operation = iota
	Start
	Stop
	Reboot
)

// All returns every operation in menu order
func All() []Operation {
	return []Operation{Refresh, Start, Stop, Reboot}
}

// String implements fmt.Stringer
func (o Operation) String() string {
	switch o {
	case Refresh:
		return "refresh"
	case Start:
		return "start"
	case Stop:
		return "stop"
	case Reboot:
		return "reboot"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// Title returns the menu label for the operation
func (o Operation) Title() string {
	switch o {
	case Refresh:
		return "Refresh state"
	default:
		return strings.ToUpper(o.String()[:1]) + o.String()[1:] + " instance"
	}
}

// Progressive returns the "-ing" form used in progress headers
func (o Operation) Progressive() string {
	switch o {
	case Refresh:
		return "Refreshing"
	case Start:
		return "Starting"
	case Stop:
		return "Stopping"
	case Reboot:
		return "Rebooting"
	default:
		return o.String()
	}
}

// Parse converts an operation name into an Operation
func Parse(name string) (Operation, error) {
	for _, op := range All() {
		if strings.EqualFold(name, op.String()) {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q (supported: refresh, start, stop, reboot)", name)
}

type dispatchFunc func(provider.InstanceClient, context.Context, *types.Instance) error

// plan binds an operation to its remote call and to the status that ends
// polling. A nil dispatch means the operation only observes.
type plan struct {
	dispatch dispatchFunc
	reached  func(status string) bool
	confirm  bool
}

var plans = map[Operation]plan{
	Refresh: {
		reached: func(status string) bool { return status != "" },
	},
	Start: {
		dispatch: provider.InstanceClient.Start,
		reached:  hasPrefix("running: ok"),
	},
	Stop: {
		dispatch: provider.InstanceClient.Stop,
		reached:  hasPrefix(types.StateStopped),
		confirm:  true,
	},
	// Reboot waits for the same healthy state as start.
	Reboot: {
		dispatch: provider.InstanceClient.Reboot,
		reached:  hasPrefix("running: ok"),
		confirm:  true,
	},
}

func hasPrefix(prefix string) func(string) bool {
	return func(status string) bool {
		return strings.HasPrefix(status, prefix)
	}
}
