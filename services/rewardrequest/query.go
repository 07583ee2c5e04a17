package rewardrequest

import (
	"context"
	"strings"

	"eventreward/pkg/db/pagination"
	"eventreward/pkg/errutil"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Page is one slice of a ListAll result.
type Page struct {
	Items    []RewardRequest     `json:"items"`
	PageInfo pagination.PageInfo `json:"pageInfo"`
}

// QueryService is the read side of reward requests.
type QueryService struct {
	repo   Repository
	logger *zap.Logger
}

type QueryServiceParams struct {
	fx.In

	Repository Repository
	Logger     *zap.Logger `optional:"true"`
}

func NewQueryService(p QueryServiceParams) *QueryService {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{repo: p.Repository, logger: logger}
}

// ListByUser returns every request of the user, newest first.
func (s *QueryService) ListByUser(ctx context.Context, userID string) ([]RewardRequest, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errutil.BadRequest("userId is required", nil)
	}

	requests, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list user reward requests", zap.String("user_id", userID), zap.Error(err))
		return nil, errutil.Internal("failed to list reward requests", err)
	}
	return requests, nil
}

// ListAll returns the filtered requests, newest first, one page at a time.
func (s *QueryService) ListAll(ctx context.Context, f Filter) (*Page, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}

	var after *pagination.Cursor
	if f.Cursor != "" {
		c, err := pagination.DecodeCursor(f.Cursor)
		if err != nil {
			return nil, errutil.BadRequest("invalid cursor", err)
		}
		after = c
	}

	limit := pagination.Pagination{Limit: f.Limit}.PageSize()
	rows, err := s.repo.List(ctx, f, after, limit+1)
	if err != nil {
		s.logger.Error("failed to list reward requests", zap.Error(err))
		return nil, errutil.Internal("failed to list reward requests", err)
	}

	items, info, err := pagination.BuildCursorPage(rows, limit, func(r RewardRequest) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.RequestID}
	})
	if err != nil {
		return nil, errutil.Internal("failed to build page", err)
	}
	return &Page{Items: items, PageInfo: info}, nil
}

func validateFilter(f Filter) error {
	var details []errutil.Detail
	if f.Status != "" && !f.Status.Valid() {
		details = append(details, errutil.Detail{Field: "status", Message: "unknown reward request status"})
	}
	for field, r := range map[string]TimeRange{
		"requestedAt": f.RequestedAt,
		"processedAt": f.ProcessedAt,
		"claimedAt":   f.ClaimedAt,
	} {
		if !r.valid() {
			details = append(details, errutil.Detail{Field: field, Message: "end must not be before start"})
		}
	}
	if f.Limit < 0 || f.Limit > pagination.MaxLimit {
		details = append(details, errutil.Detail{Field: "limit", Message: "must be between 1 and 500"})
	}
	if len(details) > 0 {
		return errutil.BadRequest("invalid reward request filter", nil, errutil.WithDetails(details...))
	}
	return nil
}
