package membership

import "time"

// Billing class codes used for dues rates
const (
	BillingClassRegular     = "REG"
	BillingClassNewLicensee = "NEW"
	BillingClassAssociate   = "ASC"
	BillingClassRetired     = "RET"
	BillingClassStudent     = "STU"
)

// DeriveBillingClass picks the dues tier for a member who has none on file
// in AM.net. Students and retirees take precedence; members without a CPA
// certificate are associates; a certificate dated in the current or previous
// fiscal year makes a new licensee.
func DeriveBillingClass(p Profile, calendar FiscalCalendar, now time.Time) string {
	switch {
	case p.Student:
		return BillingClassStudent
	case p.Retired:
		return BillingClassRetired
	case !p.IsCPA():
		return BillingClassAssociate
	case p.CertDate != nil && calendar.FiscalYear(*p.CertDate) >= calendar.FiscalYear(now)-1:
		return BillingClassNewLicensee
	default:
		return BillingClassRegular
	}
}
