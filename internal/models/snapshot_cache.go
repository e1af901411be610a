// Package models holds the GORM models backing the snapshot cache.
package models

import "time"

// SnapshotCache stores one fetched fundamentals snapshot per (source,
// ticker) pair, serialized as JSON. Rows are refreshed in place when the
// cache TTL expires; expired rows are never served.
type SnapshotCache struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Source    string    `gorm:"not null;uniqueIndex:uq_snapshot_caches_source_ticker" json:"source"`
	Ticker    string    `gorm:"not null;uniqueIndex:uq_snapshot_caches_source_ticker" json:"ticker"`
	Payload   []byte    `gorm:"not null" json:"-"`
	FetchedAt time.Time `gorm:"not null" json:"fetched_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
