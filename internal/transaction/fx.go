package transaction

import (
	"github.com/tirtakarya/waterbill/internal/transaction/repository"
	"github.com/tirtakarya/waterbill/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
