package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// Delimiter used in exported documents. Semicolon keeps the files
// readable in spreadsheet tools configured for comma decimal locales.
const Delimiter = ';'

// RenderCSV writes the report as UTF-8 delimited text: a summary block
// followed by one line per bill. The output is consumed by spreadsheet
// tooling and never re-imported.
func RenderCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = Delimiter

	records := [][]string{
		{"period", r.Period},
		{"inflow", formatAmount(r.Inflow)},
		{"outflow", formatAmount(r.Outflow)},
		{"balance", formatAmount(r.Balance)},
		{"lifetime_balance", formatAmount(r.LifetimeBalance)},
		{},
		{"customer", "prev_reading", "curr_reading", "charge", "penalty", "arrears", "status"},
	}

	for _, row := range r.Rows {
		status := "unpaid"
		if row.Paid {
			status = "paid"
		}
		records = append(records, []string{
			row.CustomerName,
			strconv.FormatInt(row.PrevReading, 10),
			strconv.FormatInt(row.CurrReading, 10),
			formatAmount(row.Charge),
			formatAmount(row.Penalty),
			formatAmount(row.Arrears),
			status,
		})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAmount(v int64) string {
	return strconv.FormatInt(v, 10)
}
