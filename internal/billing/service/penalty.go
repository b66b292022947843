package service

import (
	"time"

	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	"github.com/tirtakarya/waterbill/internal/tariff"
)

// latePenalty applies the settlement-time penalty rule, the single
// policy in force system-wide: a bill settled in a later calendar month
// than its period is always late; a bill settled within its own period
// is late only after the due day. Social connections are exempt.
//
// The rule is evaluated exclusively at settlement. Bill creation always
// starts with a zero penalty, and reverting a settlement resets it.
func latePenalty(table tariff.Table, category tariff.Category, period string, at time.Time) int64 {
	if category == tariff.CategorySocial {
		return 0
	}

	current := billingdomain.PeriodOf(at)
	switch {
	case period < current:
		return table.LateFee
	case period == current && at.Day() > table.DueDay:
		return table.LateFee
	default:
		return 0
	}
}
