package prompt

import "go.uber.org/fx"

// FXModule provides the prompt assembler.
var FXModule = fx.Module("prompt",
	fx.Provide(
		NewConfig,
		NewAssembler,
	),
)
