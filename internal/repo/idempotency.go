package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-console-navigator/internal/domain"
)

// ErrDuplicate reports that a live key already holds the tuple.
var ErrDuplicate = errors.New("idempotency key already used")

// GetIdempotencyKey returns the key for (clientID, scope, key) if it is still
// live at now, ErrNotFound otherwise.
func GetIdempotencyKey(ctx context.Context, db *gorm.DB, clientID, scope, key string, now time.Time) (*domain.IdempotencyKey, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var k domain.IdempotencyKey
	err := db.WithContext(ctx).
		Where("client_id = ? AND scope = ? AND key = ? AND expires_at > ?", clientID, scope, key, now.UTC()).
		Take(&k).Error
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// PutIdempotencyKey stores k, created at now. An expired row with the same
// tuple is overwritten in the same statement; a live one is left alone and
// ErrDuplicate is returned.
func PutIdempotencyKey(ctx context.Context, db *gorm.DB, k domain.IdempotencyKey, now time.Time) error {
	k.CreatedAt = now.UTC()
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}, {Name: "scope"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"load_id", "status", "created_at", "expires_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Lte{Column: clause.Column{Table: k.TableName(), Name: "expires_at"}, Value: k.CreatedAt},
			}},
		}).
		Create(&k)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

// PurgeExpiredIdempotency deletes keys that are dead at now.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&domain.IdempotencyKey{})
	return res.RowsAffected, res.Error
}
