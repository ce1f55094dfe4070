package reference

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrCatalogCodeRequired is returned for a blank event or product code
var ErrCatalogCodeRequired = shared.NewDomainError("INVALID_INPUT", "Catalog code is required")

// CatalogService reads AM.net events and products on demand. Nothing is stored locally.
type CatalogService struct {
	gateway integration.ReferenceGateway
	logger  *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(gateway integration.ReferenceGateway, logger *zap.Logger) *CatalogService {
	return &CatalogService{gateway: gateway, logger: logger}
}

// Event returns the AM.net event with the given code
func (s *CatalogService) Event(ctx context.Context, code string) (*EventResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCatalogCodeRequired
	}
	e, err := s.gateway.GetEvent(ctx, code)
	if err != nil {
		s.logger.Debug("event lookup failed", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &EventResponse{
		Code:      e.Code,
		Title:     e.Title,
		StartDate: e.StartDate.Ptr(),
		EndDate:   e.EndDate.Ptr(),
		Location:  e.Location,
		Credits:   amountPtr(e.Credits),
	}, nil
}

// Product returns the AM.net product with the given code
func (s *CatalogService) Product(ctx context.Context, code string) (*ProductResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCatalogCodeRequired
	}
	p, err := s.gateway.GetProduct(ctx, code)
	if err != nil {
		s.logger.Debug("product lookup failed", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &ProductResponse{
		Code:        p.Code,
		Title:       p.Title,
		Type:        p.Type,
		MemberPrice: amountPtr(p.MemberPrice),
		ListPrice:   amountPtr(p.ListPrice),
	}, nil
}

// amountPtr is nil for absent or non-numeric amounts
func amountPtr(a integration.Amount) *decimal.Decimal {
	d, ok := a.Decimal()
	if !ok {
		return nil
	}
	return &d
}
