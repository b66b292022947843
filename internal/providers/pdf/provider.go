package pdf

import (
	"context"

	"github.com/tirtakarya/waterbill/internal/report"
	"go.uber.org/fx"
)

// Provider renders a monthly report for printing.
type Provider interface {
	GenerateReport(ctx context.Context, r *report.Report) ([]byte, error)
}

// Module wires the maroto-backed provider.
var Module = fx.Module("providers.pdf",
	fx.Provide(NewMarotoProvider),
)
