package sources

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
	"finsight/internal/models"
)

// CachingSource is a read-through TTL cache in front of a Source. Caching
// lives at the fetch boundary so the calculator and services stay pure; a
// stale or missing row falls through to the wrapped source and refreshes
// the row in place.
type CachingSource struct {
	inner Source
	db    *gorm.DB
	ttl   time.Duration
	now   func() time.Time // overridable for tests
}

// NewCachingSource wraps a source with a snapshot cache.
func NewCachingSource(inner Source, db *gorm.DB, ttl time.Duration) *CachingSource {
	return &CachingSource{inner: inner, db: db, ttl: ttl, now: time.Now}
}

// Name returns the wrapped source's display name.
func (s *CachingSource) Name() string { return s.inner.Name() }

// HealthCheck delegates to the wrapped source; the cache itself has no
// health of its own worth reporting separately.
func (s *CachingSource) HealthCheck(ctx context.Context) error {
	return s.inner.HealthCheck(ctx)
}

// FetchFundamentals serves a fresh cached snapshot when one exists,
// otherwise fetches from the wrapped source and stores the result. Cache
// write failures are logged, not surfaced: a working fetch beats a broken
// cache.
func (s *CachingSource) FetchFundamentals(ctx context.Context, ticker string) (*Snapshot, error) {
	var row models.SnapshotCache
	err := s.db.WithContext(ctx).
		Where("source = ? AND ticker = ? AND fetched_at > ?", s.inner.Name(), ticker, s.now().Add(-s.ttl)).
		First(&row).Error
	if err == nil {
		var snapshot Snapshot
		if unmarshalErr := json.Unmarshal(row.Payload, &snapshot); unmarshalErr == nil {
			return &snapshot, nil
		}
		// Corrupt payload: fall through and refetch.
		logger.Get().Warnw("discarding corrupt snapshot cache row", "source", s.inner.Name(), "ticker", ticker)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snapshot, err := s.inner.FetchFundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	entry := models.SnapshotCache{
		Source:    s.inner.Name(),
		Ticker:    ticker,
		Payload:   payload,
		FetchedAt: s.now(),
	}
	storeErr := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "fetched_at", "updated_at"}),
	}).Create(&entry).Error
	if storeErr != nil {
		logger.Get().Warnw("failed to store snapshot cache row",
			"source", s.inner.Name(), "ticker", ticker, "error", storeErr.Error())
	}

	return snapshot, nil
}
