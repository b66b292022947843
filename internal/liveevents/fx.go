package liveevents

import "go.uber.org/fx"

// Module wires the change-event hub shared by all mutating services.
var Module = fx.Module("liveevents",
	fx.Provide(NewHub),
)
