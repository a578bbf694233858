package translation

import (
	"github.com/smallbiznis/anubad/internal/translation/repository"
	"github.com/smallbiznis/anubad/internal/translation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("translation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
