package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-console-navigator/internal/domain"
)

// ErrNotFound is gorm.ErrRecordNotFound, so callers need not import gorm.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateLoad inserts a load in the "loading" state under id.
func CreateLoad(ctx context.Context, db *gorm.DB, id, fileName string, startedAt time.Time) (*domain.LoadRecord, error) {
	l := &domain.LoadRecord{
		ID:        id,
		FileName:  fileName,
		Status:    domain.LoadStatusLoading,
		StartedAt: startedAt.UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// FinishLoad marks a load ready and stores its summary.
func FinishLoad(ctx context.Context, db *gorm.DB, info domain.IndexInfo) error {
	finished := info.LoadedAt.UTC()
	return updateLoad(ctx, db, info.LoadID, map[string]any{
		"status":      domain.LoadStatusReady,
		"total_names": info.TotalNames,
		"profiles":    domain.JoinList(info.Profiles),
		"regions":     domain.JoinList(info.Regions),
		"finished_at": &finished,
	})
}

// FailLoad marks a load failed with msg.
func FailLoad(ctx context.Context, db *gorm.DB, id, msg string, at time.Time) error {
	finished := at.UTC()
	return updateLoad(ctx, db, id, map[string]any{
		"status":      domain.LoadStatusFailed,
		"error":       msg,
		"finished_at": &finished,
	})
}

// DeleteLoad removes the load with id. A missing row is not an error.
func DeleteLoad(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.LoadRecord{}).Error
}

func updateLoad(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.LoadRecord{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetLoad fetches a load by id.
func GetLoad(ctx context.Context, db *gorm.DB, id string) (*domain.LoadRecord, error) {
	var l domain.LoadRecord
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// CountLoads returns the number of recorded load attempts.
func CountLoads(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.LoadRecord{}).Count(&total).Error
	return total, err
}

// ListLoadsPage returns loads most recent first. Use CountLoads for the
// pagination total.
func ListLoadsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.LoadRecord, error) {
	var out []domain.LoadRecord
	err := db.WithContext(ctx).
		Order("started_at desc").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// LatestReadyLoad returns the most recently finished successful load.
func LatestReadyLoad(ctx context.Context, db *gorm.DB) (*domain.LoadRecord, error) {
	var l domain.LoadRecord
	err := db.WithContext(ctx).
		Where("status = ?", domain.LoadStatusReady).
		Order("finished_at desc").
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// MarkStaleLoads fails every load left in the "loading" state, e.g. by a
// crash. It returns the number of rows changed.
func MarkStaleLoads(ctx context.Context, db *gorm.DB, at time.Time) (int64, error) {
	finished := at.UTC()
	res := db.WithContext(ctx).
		Model(&domain.LoadRecord{}).
		Where("status = ?", domain.LoadStatusLoading).
		Updates(map[string]any{
			"status":      domain.LoadStatusFailed,
			"error":       "interrupted",
			"finished_at": &finished,
		})
	return res.RowsAffected, res.Error
}

// LoadsStats returns the number of loads and the latest UpdatedAt among them,
// which together change whenever the history does. maxUpdatedAt is nil when
// there are no loads.
func LoadsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	if count, err = CountLoads(ctx, db); err != nil || count == 0 {
		return 0, nil, err
	}
	// ORDER BY instead of MAX(): SQLite would hand MAX back as TEXT
	var latest domain.LoadRecord
	err = db.WithContext(ctx).
		Select("updated_at").
		Order("updated_at desc").
		Take(&latest).Error
	if err != nil {
		return 0, nil, err
	}
	return count, &latest.UpdatedAt, nil
}
