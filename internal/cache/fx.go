package cache

import "go.uber.org/fx"

var Module = fx.Module("cache.history",
	fx.Provide(NewHistoryCache),
)
