package spec

import "fmt"

// InvalidSpecError names a single malformed routing declaration. One bad
// declaration never invalidates the container's other declarations.
type InvalidSpecError struct {
	ContainerName string
	Label         string
	Value         string
	Reason        string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid routing spec on container %s: %s=%q: %s", e.ContainerName, e.Label, e.Value, e.Reason)
}

func newInvalidSpec(containerName, label, value, reason string) *InvalidSpecError {
	return &InvalidSpecError{
		ContainerName: containerName,
		Label:         label,
		Value:         value,
		Reason:        reason,
	}
}
