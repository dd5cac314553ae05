package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// eventBatchSize bounds the rows per INSERT when saving a journal
const eventBatchSize = 500

// GormMatchRepository implements journal.MatchRepository using GORM
type GormMatchRepository struct {
	db *gorm.DB
}

var _ journal.MatchRepository = (*GormMatchRepository)(nil)

// NewGormMatchRepository creates a new GORM match repository
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// Save persists a match and replaces its events
func (r *GormMatchRepository) Save(ctx context.Context, match *journal.Match) error {
	model := r.matchToModel(match)
	events := model.Events
	model.Events = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return fmt.Errorf("failed to save match: %w", err)
		}
		if err := tx.Where("match_id = ?", model.ID).Delete(&OrderEventModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear match events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&events, eventBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save match events: %w", err)
		}
		return nil
	})
}

// FindByID retrieves a match with its events; nil when absent
func (r *GormMatchRepository) FindByID(ctx context.Context, id journal.MatchID) (*journal.Match, error) {
	var model MatchJournalModel
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("id = ?", id.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find match: %w", err)
	}
	return r.modelToMatch(&model)
}

// List returns matches without events, newest first
func (r *GormMatchRepository) List(ctx context.Context, opts journal.QueryOptions) ([]*journal.Match, error) {
	query := r.db.WithContext(ctx).Model(&MatchJournalModel{})
	if opts.Scenario != nil {
		query = query.Where("scenario = ?", *opts.Scenario)
	}
	if opts.Since != nil {
		query = query.Where("started_at >= ?", *opts.Since)
	}
	query = query.Order("started_at DESC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var models []MatchJournalModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	matches := make([]*journal.Match, len(models))
	for i := range models {
		m, err := r.modelToMatch(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert match model: %w", err)
		}
		matches[i] = m
	}
	return matches, nil
}

func (r *GormMatchRepository) modelToMatch(model *MatchJournalModel) (*journal.Match, error) {
	id, err := journal.ParseMatchID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid match ID in database: %w", err)
	}
	events := make([]journal.OrderEvent, len(model.Events))
	for i, e := range model.Events {
		kind, err := journal.ParseEventKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("invalid event in database: %w", err)
		}
		events[i] = journal.OrderEvent{
			Frame:    shared.Frame(e.Frame),
			Kind:     kind,
			Order:    e.OrderRef,
			UnitType: shared.UnitTypeID(e.UnitType),
			Category: e.Category,
			Builder:  shared.UnitID(e.Builder),
			Site:     e.Site,
			Reason:   build.RemovalReason(e.Reason),
		}
	}
	return journal.ReconstructMatch(
		id,
		model.Scenario,
		model.MapName,
		uint64(model.Seed),
		model.StartedAt,
		model.FinishedAt,
		shared.Frame(model.Frames),
		journal.Status(model.Status),
		events,
	), nil
}

func (r *GormMatchRepository) matchToModel(m *journal.Match) *MatchJournalModel {
	model := &MatchJournalModel{
		ID:         m.ID().String(),
		Scenario:   m.Scenario(),
		MapName:    m.MapName(),
		Seed:       int64(m.Seed()),
		Frames:     int(m.Frames()),
		Status:     string(m.Status()),
		StartedAt:  m.StartedAt(),
		FinishedAt: m.FinishedAt(),
	}
	for i, e := range m.Events() {
		model.Events = append(model.Events, OrderEventModel{
			MatchID:  model.ID,
			Seq:      i,
			Frame:    int(e.Frame),
			Kind:     string(e.Kind),
			OrderRef: e.Order,
			UnitType: int(e.UnitType),
			Category: e.Category,
			Builder:  int(e.Builder),
			Site:     e.Site,
			Reason:   string(e.Reason),
		})
	}
	return model
}
