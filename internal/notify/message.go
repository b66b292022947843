package notify

import "fmt"

// BillMessage is the text sent to a customer when a new bill is
// compiled from a meter reading.
func BillMessage(name, period string, amount, arrears int64) string {
	if arrears > 0 {
		return fmt.Sprintf(
			"Hi %s, your water bill for %s is Rp%d. Outstanding arrears: Rp%d. Total payable: Rp%d. Please pay before the 10th.",
			name, period, amount, arrears, amount+arrears,
		)
	}
	return fmt.Sprintf(
		"Hi %s, your water bill for %s is Rp%d. Please pay before the 10th.",
		name, period, amount,
	)
}

// OverdueMessage is the reminder sent after the due day for unpaid bills.
func OverdueMessage(name string, count int, total int64) string {
	if count == 1 {
		return fmt.Sprintf(
			"Hi %s, you have 1 unpaid water bill totalling Rp%d. A late fee applies after the 10th. Please settle at the cooperative office.",
			name, total,
		)
	}
	return fmt.Sprintf(
		"Hi %s, you have %d unpaid water bills totalling Rp%d. A late fee applies after the 10th. Please settle at the cooperative office.",
		name, count, total,
	)
}
