package peerreview

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vscpa/backend/internal/domain/firm"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/peerreview"
	"go.uber.org/zap"
)

// Service reports firms' peer-review billing
type Service struct {
	firmRepo firm.Repository
	gateway  integration.PeerReviewGateway
	calendar membership.FiscalCalendar
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new peer review Service
func NewService(firmRepo firm.Repository, gateway integration.PeerReviewGateway, calendar membership.FiscalCalendar, logger *zap.Logger) *Service {
	return &Service{
		firmRepo: firmRepo,
		gateway:  gateway,
		calendar: calendar,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Info nets the firm's AM.net peer-review ledger. When the firm's billing
// class changed after the current year was billed, lines moving the year to
// the new class are added before netting. Rate lookup failures leave the
// ledger as AM.net reports it.
func (s *Service) Info(ctx context.Context, firmCode string) (*InfoResponse, error) {
	firmCode = strings.TrimSpace(firmCode)
	remote, err := s.gateway.GetFirmPeerReview(ctx, firmCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fy := s.calendar.FiscalYear(now)
	class := s.billingClass(ctx, firmCode, remote)

	txs, skipped := peerreview.FromRemote(remote.Transactions)
	if len(skipped) > 0 {
		s.logger.Warn("peer review lines skipped",
			zap.String("firm_code", firmCode),
			zap.Int("count", len(skipped)),
		)
	}
	ledger := peerreview.Ledger{Transactions: txs}
	year := ledger.CurrentYear(fy)

	resp := &InfoResponse{
		FirmCode:     firmCode,
		FirmName:     remote.FirmName,
		BillingClass: class,
		FiscalYear:   year,
		Skipped:      len(skipped),
	}

	if rates, ok := s.rates(ctx, year); ok {
		if r, found := rates[class]; found {
			resp.Rate = &r
		}
		changed, err := ledger.ApplyBillingClassChange(class, rates, year, now)
		if err != nil {
			s.logger.Warn("billing class change not applied",
				zap.String("firm_code", firmCode),
				zap.String("billing_class", class),
				zap.Int("fiscal_year", year),
				zap.Error(err),
			)
		} else {
			resp.ClassChanged = len(changed.Transactions) != len(ledger.Transactions)
			ledger = changed
		}
	}

	summary := ledger.Net()
	resp.Balance = summary.Balance
	resp.Credit = summary.Credit
	resp.Years = summary.Years
	if resp.Years == nil {
		resp.Years = []peerreview.YearBalance{}
	}
	if yb, ok := summary.YearBalance(year); ok {
		resp.CurrentYear = &yb
	}
	resp.Transactions = ledger.Transactions
	return resp, nil
}

// billingClass prefers the locally mirrored firm, which reflects changes
// picked up from /FirmChanges, over the class on the ledger response.
func (s *Service) billingClass(ctx context.Context, code string, remote *integration.FirmPeerReview) string {
	f, err := s.firmRepo.FindByCode(ctx, code)
	switch {
	case err == nil && f.BillingClass != "":
		return f.BillingClass
	case err != nil && !errors.Is(err, firm.ErrFirmNotFound):
		s.logger.Warn("firm lookup failed", zap.String("firm_code", code), zap.Error(err))
	}
	return strings.TrimSpace(remote.BillingClassCode)
}

func (s *Service) rates(ctx context.Context, fy int) (peerreview.Rates, bool) {
	rates, err := s.gateway.GetPeerReviewRates(ctx, fy)
	if err != nil {
		s.logger.Warn("peer review rate lookup failed", zap.Int("fiscal_year", fy), zap.Error(err))
		return nil, false
	}
	return peerreview.RatesFromRemote(rates, fy), true
}
