package customer

import (
	"github.com/tirtakarya/waterbill/internal/customer/repository"
	"github.com/tirtakarya/waterbill/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
