package types

import "strings"

// Common EC2 lifecycle states
const (
	StatePending      = "pending"
	StateRunning      = "running"
	StateShuttingDown = "shutting-down"
	StateTerminated   = "terminated"
	StateStopping     = "stopping"
	StateStopped      = "stopped"
)

// Instance represents a compute instance discovered in a region
type Instance struct {
	ID        string // provider-assigned, immutable
	Name      string // from the Name tag, may be empty
	Region    string
	Type      string
	PrivateIP string
	PublicIP  string
	State     string // last observed lifecycle state
}

// DisplayName returns the name, or the ID when the instance is untagged
func (i *Instance) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// IsStopped returns true if the instance was last seen stopped
func (i *Instance) IsStopped() bool {
	return i.State == StateStopped
}

// LifecycleState returns the lifecycle part of a composite status string
// such as "running: initializing".
func LifecycleState(status string) string {
	state, _, _ := strings.Cut(status, ":")
	return strings.TrimSpace(state)
}
