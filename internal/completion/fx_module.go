package completion

import (
	"go.uber.org/fx"
)

// FXModule provides the completion provider behind the Provider interface.
var FXModule = fx.Module("completion",
	fx.Provide(
		NewConfig,
		NewHTTPProvider,
		func(p *HTTPProvider) Provider { return p },
	),
)
