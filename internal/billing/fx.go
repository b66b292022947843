package billing

import (
	"github.com/tirtakarya/waterbill/internal/billing/repository"
	"github.com/tirtakarya/waterbill/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
