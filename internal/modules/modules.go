// Package modules holds the pluggable features and the fixed registration
// order they load in. Registration is explicit: the list below is the whole
// registry, there is no runtime discovery.
package modules

import "github.com/Pintuzoft/osbase/internal/engine"

// All returns the modules in load order.
func All() []engine.Module {
	return []engine.Module{
		&Balancer{},
		&Announcer{},
	}
}
