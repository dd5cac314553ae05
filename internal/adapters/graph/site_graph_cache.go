package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/ai"
	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
)

// SnapshotStore persists compressed graph snapshots
type SnapshotStore interface {
	Get(ctx context.Context, mapName, fingerprint string) (*persistence.StoredGraph, error)
	Add(ctx context.Context, graph persistence.StoredGraph) error
}

// SiteGraphCache links a registry from a cached snapshot when one exists for
// the same map and site selection, and runs the graph builder otherwise.
//
// Caching Strategy (Two-Tier):
// - Tier 1: in-memory snapshots for the lifetime of the process
// - Tier 2: zstd-compressed JSON rows in the site_graphs table
// - Concurrent builds of the same selection are serialized per key
type SiteGraphCache struct {
	mapName string
	store   SnapshotStore
	builder ai.GraphLinker

	memory     sync.Map // key: "map:fingerprint" -> resource.GraphSnapshot
	buildLocks sync.Map // key: "map:fingerprint" -> *sync.Mutex

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ ai.GraphLinker = (*SiteGraphCache)(nil)

// NewSiteGraphCache creates a cache for one map. store may be nil for a
// memory-only cache.
func NewSiteGraphCache(mapName string, store SnapshotStore, builder ai.GraphLinker) (*SiteGraphCache, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &SiteGraphCache{
		mapName: mapName,
		store:   store,
		builder: builder,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Link restores reg's links from the first tier that has them, building and
// storing them on a full miss
func (c *SiteGraphCache) Link(ctx context.Context, reg *resource.Registry) error {
	key := c.mapName + ":" + reg.Fingerprint()

	if ok := c.fromMemory(ctx, key, reg); ok {
		return nil
	}

	lock, _ := c.buildLocks.LoadOrStore(key, &sync.Mutex{})
	mutex := lock.(*sync.Mutex)
	mutex.Lock()
	defer mutex.Unlock()

	// another caller may have filled the memory tier while we waited
	if ok := c.fromMemory(ctx, key, reg); ok {
		return nil
	}
	if ok := c.fromStore(ctx, key, reg); ok {
		return nil
	}

	if err := c.builder.Link(ctx, reg); err != nil {
		return err
	}
	snap := reg.Snapshot()
	c.memory.Store(key, snap)
	if err := c.save(ctx, snap); err != nil {
		// the match can go on without a stored snapshot
		common.LoggerFromContext(ctx).Log("WARNING", fmt.Sprintf("[GraphCache] failed to store snapshot: %v", err), map[string]interface{}{
			"map": c.mapName,
		})
	}
	return nil
}

func (c *SiteGraphCache) fromMemory(ctx context.Context, key string, reg *resource.Registry) bool {
	cached, ok := c.memory.Load(key)
	metrics.RecordGraphCacheLookup("memory", ok)
	if !ok {
		return false
	}
	if err := reg.RestoreGraph(cached.(resource.GraphSnapshot)); err != nil {
		common.LoggerFromContext(ctx).Log("WARNING", fmt.Sprintf("[GraphCache] discarding memory snapshot: %v", err), nil)
		c.memory.Delete(key)
		return false
	}
	return true
}

func (c *SiteGraphCache) fromStore(ctx context.Context, key string, reg *resource.Registry) bool {
	if c.store == nil {
		return false
	}
	logger := common.LoggerFromContext(ctx)

	stored, err := c.store.Get(ctx, c.mapName, reg.Fingerprint())
	if err != nil {
		logger.Log("WARNING", fmt.Sprintf("[GraphCache] failed to load snapshot: %v", err), nil)
	}
	metrics.RecordGraphCacheLookup("database", stored != nil)
	if stored == nil {
		return false
	}

	snap, err := c.Decode(stored.Payload)
	if err == nil {
		err = reg.RestoreGraph(snap)
	}
	if err != nil {
		logger.Log("WARNING", fmt.Sprintf("[GraphCache] stored snapshot unusable, rebuilding: %v", err), map[string]interface{}{
			"map":         c.mapName,
			"fingerprint": stored.Fingerprint,
		})
		return false
	}
	c.memory.Store(key, snap)
	logger.Log("INFO", fmt.Sprintf("[GraphCache] Restored %d links for %s from database", len(snap.Links), c.mapName), nil)
	return true
}

func (c *SiteGraphCache) save(ctx context.Context, snap resource.GraphSnapshot) error {
	if c.store == nil {
		return nil
	}
	payload, err := c.Encode(snap)
	if err != nil {
		return err
	}
	return c.store.Add(ctx, persistence.StoredGraph{
		MapName:     c.mapName,
		Fingerprint: snap.Fingerprint,
		Sites:       snap.Sites,
		Links:       len(snap.Links),
		Payload:     payload,
	})
}

// Encode compresses a snapshot into its stored form
func (c *SiteGraphCache) Encode(snap resource.GraphSnapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Decode reverses Encode
func (c *SiteGraphCache) Decode(payload []byte) (resource.GraphSnapshot, error) {
	var snap resource.GraphSnapshot
	if len(payload) == 0 {
		return snap, errors.New("empty snapshot payload")
	}
	raw, err := c.decoder.DecodeAll(payload, nil)
	if err != nil {
		return snap, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Close releases the zstd decoder
func (c *SiteGraphCache) Close() {
	c.decoder.Close()
	_ = c.encoder.Close()
}
