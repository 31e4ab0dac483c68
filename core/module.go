// Package core runs the long-lived parts of drmgr (the HTTP surface) as a set
// of modules sharing a Container.
package core

import "context"

// Module takes part in the App lifecycle.
type Module interface {
	Name() string
	// DependsOn lists module names that must be configured and started first.
	DependsOn() []string
	// Configure puts the module's objects into the container.
	Configure(c Container) error
	// Start must not block; long-running work goes in a goroutine.
	Start(ctx context.Context, c Container) error
	// Stop releases what Start acquired.
	Stop(ctx context.Context, c Container) error
}
