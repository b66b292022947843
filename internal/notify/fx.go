package notify

import "go.uber.org/fx"

// Module wires the outbound messaging collaborator.
var Module = fx.Module("notify",
	fx.Provide(New),
)
