package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/motoyard/motoyard-api/internal/email"
	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/logger"
	"github.com/motoyard/motoyard-api/pkg/metrics"
)

const (
	DefaultBatchSize = 50

	// Provider calls get one bounded retry. Anything beyond that is the
	// next run's problem: the item is marked failed, not requeued.
	maxPostAttempts = 2
	postRetryDelay  = 2 * time.Second
)

// ItemResult is the outcome of one content item in a dispatch run.
type ItemResult struct {
	ItemID   uuid.UUID `json:"item_id"`
	DealerID uuid.UUID `json:"dealer_id"`
	Platform string    `json:"platform"`
	Status   string    `json:"status"`
	PostID   string    `json:"post_id,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Report aggregates one dispatch run. Every claimed item lands in exactly
// one of successful/failed.
type Report struct {
	Processed  int          `json:"processed"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []ItemResult `json:"results"`
}

type Servicer interface {
	Run(ctx context.Context) (*Report, error)
}

// MetaPoster publishes to Facebook pages and Instagram accounts.
type MetaPoster interface {
	PublishPagePost(ctx context.Context, accessToken, pageID, message, imageURL, idempotencyKey string) (string, error)
	PublishInstagramPost(ctx context.Context, accessToken, instagramID, caption, imageURL, idempotencyKey string) (string, error)
}

// LinkedInPoster publishes organization posts.
type LinkedInPoster interface {
	PublishPost(ctx context.Context, accessToken, orgURN, text, imageURL, idempotencyKey string) (string, error)
}

type Service struct {
	content   repository.ContentRepository
	dealers   repository.DealerRepository
	meta      MetaPoster
	linkedin  LinkedInPoster
	email     email.Service
	batchSize int
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewService(
	content repository.ContentRepository,
	dealers repository.DealerRepository,
	meta MetaPoster,
	linkedin LinkedInPoster,
	emailSvc email.Service,
	batchSize int,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		content:   content,
		dealers:   dealers,
		meta:      meta,
		linkedin:  linkedin,
		email:     emailSvc,
		batchSize: batchSize,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run claims all due scheduled items and attempts to post each one. One
// item's failure never blocks the others; every item's outcome is persisted
// before the run returns.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	if s.metrics != nil {
		timer := prometheus.NewTimer(s.metrics.DispatchLatency)
		defer timer.ObserveDuration()
	}

	items, err := s.content.ClaimDue(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due items: %w", err)
	}

	report := &Report{Results: make([]ItemResult, 0, len(items))}
	dealerCache := make(map[uuid.UUID]*model.Dealer)
	failuresByDealer := make(map[uuid.UUID][]string)

	for _, item := range items {
		report.Processed++

		dealer, ok := dealerCache[item.DealerID]
		if !ok {
			dealer, err = s.dealers.Get(ctx, item.DealerID)
			if err != nil {
				s.recordFailure(ctx, report, item, fmt.Sprintf("dealer lookup failed: %v", err))
				continue
			}
			dealerCache[item.DealerID] = dealer
		}

		if !dealer.HasPlatform(item.Platform) {
			reason := fmt.Sprintf("%s is not connected", item.Platform)
			s.recordFailure(ctx, report, item, reason)
			failuresByDealer[dealer.ID] = append(failuresByDealer[dealer.ID], s.describe(item, reason))
			continue
		}

		postID, err := s.postWithRetry(ctx, dealer, item)
		if err != nil {
			s.recordFailure(ctx, report, item, err.Error())
			failuresByDealer[dealer.ID] = append(failuresByDealer[dealer.ID], s.describe(item, err.Error()))
			continue
		}

		if err := s.content.MarkPosted(ctx, item.ID); err != nil {
			// The provider accepted the post; losing the status update here
			// risks a duplicate on the next run, so it is loud in the logs.
			s.logger.Error(err, "post published but status update failed",
				"item_id", item.ID.String(), "post_id", postID)
		}

		report.Successful++
		report.Results = append(report.Results, ItemResult{
			ItemID:   item.ID,
			DealerID: item.DealerID,
			Platform: item.Platform,
			Status:   model.ContentStatusPosted,
			PostID:   postID,
		})
		if s.metrics != nil {
			s.metrics.DispatchItemsProcessed.WithLabelValues(item.Platform, "posted").Inc()
		}
	}

	s.notifyFailures(ctx, dealerCache, failuresByDealer)
	return report, nil
}

// postWithRetry retries transient provider failures once. The idempotency
// key makes the retry safe even if the first attempt landed.
func (s *Service) postWithRetry(ctx context.Context, dealer *model.Dealer, item *model.ContentItem) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxPostAttempts; attempt++ {
		start := time.Now()
		postID, err := s.post(ctx, dealer, item)
		s.observeProviderCall(item.Platform, start, err)
		if err == nil {
			return postID, nil
		}
		lastErr = err
		if apperrors.Code(err) != apperrors.ErrUpstream {
			break
		}
		if attempt < maxPostAttempts {
			s.logger.Warn("provider call failed, retrying",
				"item_id", item.ID.String(), "attempt", attempt, "error", err.Error())
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(postRetryDelay):
			}
		}
	}
	return "", lastErr
}

func (s *Service) observeProviderCall(platform string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	provider := "meta"
	if platform == model.PlatformLinkedIn {
		provider = "linkedin"
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ProviderRequests.WithLabelValues(provider, status).Inc()
	s.metrics.ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

// post publishes one item to its target platform, keyed by the item id so a
// provider that honors idempotency keys cannot double-post it.
func (s *Service) post(ctx context.Context, dealer *model.Dealer, item *model.ContentItem) (string, error) {
	key := item.ID.String()
	switch item.Platform {
	case model.PlatformFacebook:
		return s.meta.PublishPagePost(ctx, dealer.MetaAccessToken, dealer.FacebookPageID, item.Body, item.ImageURL, key)
	case model.PlatformInstagram:
		return s.meta.PublishInstagramPost(ctx, dealer.MetaAccessToken, dealer.InstagramID, item.Body, item.ImageURL, key)
	case model.PlatformLinkedIn:
		return s.linkedin.PublishPost(ctx, dealer.LinkedInAccessToken, dealer.LinkedInOrgURN, item.Body, item.ImageURL, key)
	default:
		return "", fmt.Errorf("unknown platform %q", item.Platform)
	}
}

func (s *Service) recordFailure(ctx context.Context, report *Report, item *model.ContentItem, reason string) {
	if err := s.content.MarkFailed(ctx, item.ID, reason); err != nil {
		s.logger.Error(err, "failed to persist item failure", "item_id", item.ID.String())
	}

	report.Failed++
	report.Results = append(report.Results, ItemResult{
		ItemID:   item.ID,
		DealerID: item.DealerID,
		Platform: item.Platform,
		Status:   model.ContentStatusFailed,
		Error:    reason,
	})
	if s.metrics != nil {
		s.metrics.DispatchItemsProcessed.WithLabelValues(item.Platform, "failed").Inc()
	}
}

func (s *Service) describe(item *model.ContentItem, reason string) string {
	return fmt.Sprintf("%s post %q: %s", item.Platform, truncate(item.Body, 60), reason)
}

func (s *Service) notifyFailures(ctx context.Context, dealers map[uuid.UUID]*model.Dealer, failures map[uuid.UUID][]string) {
	for dealerID, lines := range failures {
		dealer, ok := dealers[dealerID]
		if !ok {
			continue
		}
		if err := s.email.SendDispatchFailureDigest(ctx, dealer.Email, dealer.Name, lines); err != nil {
			s.logger.Error(err, "failed to send failure digest", "dealer_id", dealerID.String())
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
