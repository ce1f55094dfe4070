package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveBillingClass(t *testing.T) {
	cal := NewFiscalCalendar(1, time.UTC)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) // FY2026
	recent := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC) // FY2025
	old := time.Date(2015, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{"student wins", Profile{Student: true, Retired: true, CertNumber: "1"}, BillingClassStudent},
		{"retired", Profile{Retired: true, CertNumber: "1"}, BillingClassRetired},
		{"associate without certificate", Profile{}, BillingClassAssociate},
		{"new licensee", Profile{CertNumber: "0402012345", CertDate: &recent}, BillingClassNewLicensee},
		{"regular", Profile{CertNumber: "0402012345", CertDate: &old}, BillingClassRegular},
		{"regular without cert date", Profile{CertNumber: "0402012345"}, BillingClassRegular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveBillingClass(tt.profile, cal, now))
		})
	}
}
