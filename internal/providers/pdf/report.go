package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/tirtakarya/waterbill/internal/report"
)

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

// MarotoProvider renders the monthly report with Maroto v2.
type MarotoProvider struct{}

func NewMarotoProvider() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) GenerateReport(_ context.Context, r *report.Report) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Thickness: 0.5}))
	m.AddRows(summaryRow(r))
	m.AddRows(line.NewRow(1, props.Line{Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	for _, billRow := range r.Rows {
		m.AddRows(billDetailRow(billRow))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate report: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(r *report.Report) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("Monthly Water Billing Report", props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Period: "+r.Period, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 2,
			}),
		),
	)
}

func summaryRow(r *report.Report) core.Row {
	cell := func(label string, value int64) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 8, Color: colorGray, Top: 1}),
			text.New(strconv.FormatInt(value, 10), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
		)
	}
	return row.New(14).Add(
		cell("Inflow", r.Inflow),
		cell("Outflow", r.Outflow),
		cell("Balance", r.Balance),
		cell("Lifetime balance", r.LifetimeBalance),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Customer", 3, align.Left),
		h("Prev", 1, align.Right),
		h("Curr", 1, align.Right),
		h("Charge", 2, align.Right),
		h("Penalty", 2, align.Right),
		h("Arrears", 2, align.Right),
		h("Status", 1, align.Center),
	)
}

func billDetailRow(r report.Row) core.Row {
	status := "unpaid"
	if r.Paid {
		status = "paid"
	}
	cell := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1}))
	}
	return row.New(6).Add(
		cell(r.CustomerName, 3, align.Left),
		cell(strconv.FormatInt(r.PrevReading, 10), 1, align.Right),
		cell(strconv.FormatInt(r.CurrReading, 10), 1, align.Right),
		cell(strconv.FormatInt(r.Charge, 10), 2, align.Right),
		cell(strconv.FormatInt(r.Penalty, 10), 2, align.Right),
		cell(strconv.FormatInt(r.Arrears, 10), 2, align.Right),
		cell(status, 1, align.Center),
	)
}
