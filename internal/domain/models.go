// Package domain – persistence models.
//
// LoadRecord keeps the history of load attempts so operators can see which
// file produced the current index and why a load failed. The in-memory index
// itself is never persisted.
package domain

import (
	"strings"
	"time"
)

// Load statuses.
const (
	LoadStatusLoading = "loading"
	LoadStatusReady   = "ready"
	LoadStatusFailed  = "failed"
)

// LoadRecord is one load attempt.
//
// Fields:
//   - ID: UUID primary key (char(36)), also returned as IndexInfo.LoadID.
//   - FileName: identifier of the loaded file as supplied by the caller.
//   - Status: loading | ready | failed (enforced by DB constraint).
//   - TotalNames: inserted record count (0 until ready).
//   - Profiles / Regions: comma-joined sorted distinct values.
//   - Error: failure message for failed loads.
type LoadRecord struct {
	ID         string     `json:"id"          gorm:"type:char(36);primaryKey"`
	FileName   string     `json:"file_name"   gorm:"type:varchar(255);not null;index"`
	Status     string     `json:"status"      gorm:"type:varchar(16);not null;check:status IN ('loading','ready','failed')"`
	TotalNames int        `json:"total_names" gorm:"not null;default:0"`
	Profiles   string     `json:"profiles"    gorm:"type:text"`
	Regions    string     `json:"regions"     gorm:"type:text"`
	Error      string     `json:"error,omitempty" gorm:"type:text"`
	StartedAt  time.Time  `json:"started_at"  gorm:"not null;index"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName returns the database table name for LoadRecord.
func (LoadRecord) TableName() string { return "loads" }

// Info rebuilds the IndexInfo recorded by a ready load.
func (l LoadRecord) Info() IndexInfo {
	info := IndexInfo{
		LoadID:     l.ID,
		FileName:   l.FileName,
		TotalNames: l.TotalNames,
		Profiles:   splitList(l.Profiles),
		Regions:    splitList(l.Regions),
	}
	if l.FinishedAt != nil {
		info.LoadedAt = *l.FinishedAt
	}
	return info
}

// JoinList is the storage encoding for Profiles and Regions.
func JoinList(vals []string) string { return strings.Join(vals, ",") }

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// IdempotencyKey remembers which load a retried upload already produced.
// The primary key is the (client, scope, key) tuple; a row whose ExpiresAt
// has passed no longer counts and may be overwritten.
type IdempotencyKey struct {
	ClientID  string    `gorm:"type:varchar(255);primaryKey"`
	Scope     string    `gorm:"type:varchar(32);primaryKey"`
	Key       string    `gorm:"type:varchar(200);primaryKey"`
	LoadID    string    `gorm:"type:char(36);not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func (IdempotencyKey) TableName() string { return "idempotency_keys" }
