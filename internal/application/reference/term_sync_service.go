package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/taxonomy"
	"go.uber.org/zap"
)

// TermSyncService mirrors AM.net code lists into taxonomy terms
type TermSyncService struct {
	termRepo taxonomy.TermRepository
	syncRepo integration.SyncRecordRepository
	gateway  integration.ReferenceGateway
	logger   *zap.Logger
}

// NewTermSyncService creates a new TermSyncService
func NewTermSyncService(
	termRepo taxonomy.TermRepository,
	syncRepo integration.SyncRecordRepository,
	gateway integration.ReferenceGateway,
	logger *zap.Logger,
) *TermSyncService {
	return &TermSyncService{termRepo: termRepo, syncRepo: syncRepo, gateway: gateway, logger: logger}
}

// Refresh fetches every vocabulary's /Lists entry and upserts its terms.
// Terms AM.net no longer lists are left in place. A failed list does not
// stop the others; the combined error is returned.
func (s *TermSyncService) Refresh(ctx context.Context) (*RefreshResult, error) {
	record := integration.StartSync(integration.SyncDirectionTerms, nil, "")
	res := &RefreshResult{Kind: "terms", PerList: make(map[string]int, len(taxonomy.Vocabularies))}

	var errs []error
	for _, v := range taxonomy.Vocabularies {
		n, err := s.refreshVocabulary(ctx, v, res)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", v, err))
			continue
		}
		res.PerList[string(v)] = n
	}

	err := errors.Join(errs...)
	if err != nil {
		record.Fail(err)
		res.Error = err.Error()
	} else {
		record.Succeed()
	}
	res.Status = string(record.Status)
	if saveErr := s.syncRepo.Save(context.WithoutCancel(ctx), record); saveErr != nil {
		s.logger.Error("failed to save sync record", zap.Error(saveErr))
	}

	s.logger.Info("terms refreshed",
		zap.Int("fetched", res.Fetched),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Error(err),
	)
	return res, err
}

func (s *TermSyncService) refreshVocabulary(ctx context.Context, v taxonomy.Vocabulary, res *RefreshResult) (int, error) {
	items, err := s.gateway.GetList(ctx, v.AMNetList())
	if err != nil {
		return 0, err
	}
	existing, err := s.termRepo.FindByVocabulary(ctx, v)
	if err != nil {
		return 0, err
	}
	byCode := make(map[string]*taxonomy.Term, len(existing))
	for i := range existing {
		byCode[strings.ToUpper(existing[i].Code)] = &existing[i]
	}

	var batch []*taxonomy.Term
	for _, item := range items {
		code := strings.TrimSpace(item.Code)
		if code == "" {
			continue
		}
		res.Fetched++
		if t, ok := byCode[strings.ToUpper(code)]; ok {
			if t.Refresh(item.Description, item.Active) {
				batch = append(batch, t)
				res.Updated++
			} else {
				res.Unchanged++
			}
			continue
		}
		t, err := taxonomy.NewTerm(v, code, item.Description)
		if err != nil {
			return 0, err
		}
		t.Active = item.Active
		byCode[strings.ToUpper(code)] = t
		batch = append(batch, t)
		res.Created++
	}

	if len(batch) > 0 {
		if err := s.termRepo.UpsertBatch(ctx, batch); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}
