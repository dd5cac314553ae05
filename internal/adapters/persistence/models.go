package persistence

import (
	"time"
)

// SiteGraphModel represents the site_graphs table. One row per map and
// selection of sites; the payload is a zstd-compressed JSON snapshot.
type SiteGraphModel struct {
	MapName     string    `gorm:"column:map_name;primaryKey;size:255"`
	Fingerprint string    `gorm:"column:fingerprint;primaryKey;size:64"`
	Sites       int       `gorm:"column:sites;not null"`
	Links       int       `gorm:"column:links;not null"`
	Payload     []byte    `gorm:"column:payload;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (SiteGraphModel) TableName() string {
	return "site_graphs"
}

// MatchJournalModel represents the match_journals table
type MatchJournalModel struct {
	ID         string            `gorm:"column:id;primaryKey;size:36"`
	Scenario   string            `gorm:"column:scenario;index;not null"`
	MapName    string            `gorm:"column:map_name"`
	Seed       int64             `gorm:"column:seed;not null"` // bit pattern of the uint64 seed
	Frames     int               `gorm:"column:frames;not null"`
	Status     string            `gorm:"column:status;size:20;not null"`
	StartedAt  time.Time         `gorm:"column:started_at;index;not null"`
	FinishedAt *time.Time        `gorm:"column:finished_at"`
	Events     []OrderEventModel `gorm:"foreignKey:MatchID;references:ID;constraint:OnDelete:CASCADE;"`
}

func (MatchJournalModel) TableName() string {
	return "match_journals"
}

// OrderEventModel represents the order_events table
type OrderEventModel struct {
	ID       int    `gorm:"column:id;primaryKey;autoIncrement"`
	MatchID  string `gorm:"column:match_id;index;not null;size:36"`
	Seq      int    `gorm:"column:seq;not null"`
	Frame    int    `gorm:"column:frame;not null"`
	Kind     string `gorm:"column:kind;size:20;not null"`
	OrderRef string `gorm:"column:order_ref;size:50"`
	UnitType int    `gorm:"column:unit_type;not null"`
	Category string `gorm:"column:category;size:100"`
	Builder  int    `gorm:"column:builder"`
	Site     int    `gorm:"column:site"`
	Reason   string `gorm:"column:reason;size:30"`
}

func (OrderEventModel) TableName() string {
	return "order_events"
}

// AllModels lists every table for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&SiteGraphModel{},
		&MatchJournalModel{},
		&OrderEventModel{},
	}
}
