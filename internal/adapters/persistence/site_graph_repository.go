package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoredGraph is a persisted site-graph payload
type StoredGraph struct {
	MapName     string
	Fingerprint string
	Sites       int
	Links       int
	Payload     []byte
	UpdatedAt   time.Time
}

// GormSiteGraphRepository stores compressed site-graph snapshots
type GormSiteGraphRepository struct {
	db *gorm.DB
}

// NewGormSiteGraphRepository creates a new GORM-based site graph repository
func NewGormSiteGraphRepository(db *gorm.DB) *GormSiteGraphRepository {
	return &GormSiteGraphRepository{db: db}
}

// Get retrieves the snapshot of a map's site selection; nil on a miss
func (r *GormSiteGraphRepository) Get(ctx context.Context, mapName, fingerprint string) (*StoredGraph, error) {
	var model SiteGraphModel
	err := r.db.WithContext(ctx).
		Where("map_name = ? AND fingerprint = ?", mapName, fingerprint).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get site graph: %w", err)
	}
	return &StoredGraph{
		MapName:     model.MapName,
		Fingerprint: model.Fingerprint,
		Sites:       model.Sites,
		Links:       model.Links,
		Payload:     model.Payload,
		UpdatedAt:   model.UpdatedAt,
	}, nil
}

// Add persists a snapshot (upsert)
func (r *GormSiteGraphRepository) Add(ctx context.Context, graph StoredGraph) error {
	now := time.Now()
	model := SiteGraphModel{
		MapName:     graph.MapName,
		Fingerprint: graph.Fingerprint,
		Sites:       graph.Sites,
		Links:       graph.Links,
		Payload:     graph.Payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "map_name"}, {Name: "fingerprint"}},
			DoUpdates: clause.AssignmentColumns([]string{"sites", "links", "payload", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to add site graph: %w", err)
	}
	return nil
}

// ListByMap returns every snapshot stored for a map, newest first
func (r *GormSiteGraphRepository) ListByMap(ctx context.Context, mapName string) ([]StoredGraph, error) {
	var models []SiteGraphModel
	if err := r.db.WithContext(ctx).
		Select("map_name", "fingerprint", "sites", "links", "updated_at").
		Where("map_name = ?", mapName).
		Order("updated_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list site graphs: %w", err)
	}
	out := make([]StoredGraph, len(models))
	for i, m := range models {
		out[i] = StoredGraph{MapName: m.MapName, Fingerprint: m.Fingerprint, Sites: m.Sites, Links: m.Links, UpdatedAt: m.UpdatedAt}
	}
	return out, nil
}
