// Package schedule produces billing due-date sequences from a plan's
// frequency. It is pure: no store access, no ambient clock.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
)

// MaxEntries bounds any generated schedule. A small custom step over a
// multi-year window would otherwise produce hundreds of reminders.
const MaxEntries = 24

// DefaultCustomDays is the step used for CUSTOM frequency when the plan
// does not carry its own day count.
const DefaultCustomDays = 30

// Entry is one scheduled billing obligation. InstallmentNumber and
// TotalInstallments are nil unless the plan has more than one installment.
type Entry struct {
	DueDate           time.Time
	Amount            decimal.Decimal
	InstallmentNumber *int
	TotalInstallments *int
}

// NextBillingDate advances from by one billing period. Unknown frequencies
// fall back to monthly, matching the behaviour of payment confirmation when
// a plan row predates the frequency vocabulary.
func NextBillingDate(from time.Time, frequency models.BillingFrequency, customDays *int) time.Time {
	switch frequency {
	case models.FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case models.FrequencySemiannual:
		return from.AddDate(0, 6, 0)
	case models.FrequencyAnnual:
		return from.AddDate(1, 0, 0)
	case models.FrequencyCustom:
		days := DefaultCustomDays
		if customDays != nil && *customDays > 0 {
			days = *customDays
		}
		return from.AddDate(0, 0, days)
	default: // monthly
		return from.AddDate(0, 1, 0)
	}
}

// Generate returns the ordered due-date sequence from start through end
// (inclusive), stepping by frequency and numbering installments from
// firstInstallment. It never errors: the result may be empty, and is capped
// at MaxEntries regardless of end.
func Generate(start, end time.Time, frequency models.BillingFrequency, customDays *int,
	installmentAmount decimal.Decimal, totalInstallments, firstInstallment int) []Entry {

	entries := make([]Entry, 0, MaxEntries)
	current := start
	number := firstInstallment

	for !current.After(end) && len(entries) < MaxEntries {
		e := Entry{
			DueDate: current,
			Amount:  installmentAmount,
		}
		if totalInstallments > 1 {
			n := number
			total := totalInstallments
			e.InstallmentNumber = &n
			e.TotalInstallments = &total
		}
		entries = append(entries, e)

		current = NextBillingDate(current, frequency, customDays)
		number++
	}

	return entries
}
