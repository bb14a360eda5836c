package roll

//go:generate mockgen -destination=mock/mock_service.go -package=mockroll -source=service.go

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/Ferroin/roll35/internal/catalog"
	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/random"
	"github.com/Ferroin/roll35/internal/repositories/rolls"
	spellsvc "github.com/Ferroin/roll35/internal/services/spell"
)

const (
	// maxAttempts is the global ceiling on reroll hops, cost-bound
	// retries, and random rank/category iterations within one request
	maxAttempts = 128

	// defaultMaxCount bounds one batch roll
	defaultMaxCount = 32
)

// Service defines the roll orchestrator interface
type Service interface {
	// Roll resolves a partially specified request into one concrete
	// item. channelID attributes the roll for the history view and
	// may be empty.
	Roll(ctx context.Context, channelID string, req treasure.RollRequest) (*treasure.RolledItem, error)

	// RollMany rolls count items concurrently, collecting them in
	// completion order. The first failure aborts the batch.
	RollMany(ctx context.Context, channelID string, req treasure.RollRequest, count int) ([]*treasure.RolledItem, error)

	// Recent returns the channel's roll history, newest first
	Recent(ctx context.Context, channelID string, n int) ([]*rolls.Record, error)

	// ListCategories returns every rollable category name
	ListCategories(ctx context.Context) ([]string, error)

	// ListTags returns every ordnance base-item tag
	ListTags(ctx context.Context) ([]string, error)

	// ListSlots returns the wondrous body slots
	ListSlots(ctx context.Context) ([]string, error)

	// ListClasses returns the casting classes, including the derived
	// aggregate names
	ListClasses(ctx context.Context) ([]string, error)
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	// Registry supplies the catalog tables. Ignored when Handle is set.
	Registry *catalog.Registry

	// Handle supplies the catalog tables through a swappable reference,
	// letting a reload replace them without restarting the service
	Handle *catalog.Handle

	// Spells resolves compound-item spell draws
	Spells spellsvc.Service

	// History is optional; rolls are recorded fire-and-forget when set
	History rolls.Repository

	// Source is optional; a time-seeded source is used when nil
	Source random.Source

	// MaxCount bounds one batch; defaults to 32
	MaxCount int
}

type service struct {
	handle   *catalog.Handle
	spells   spellsvc.Service
	history  rolls.Repository
	src      random.Source
	maxCount int
}

// NewService creates a new roll orchestrator
func NewService(cfg *ServiceConfig) (Service, error) {
	if cfg == nil || (cfg.Registry == nil && cfg.Handle == nil) {
		return nil, rollerr.Invalid("roll service requires a catalog registry")
	}

	handle := cfg.Handle
	if handle == nil {
		handle = catalog.NewHandle(cfg.Registry)
	}

	svc := &service{
		handle:   handle,
		spells:   cfg.Spells,
		history:  cfg.History,
		src:      cfg.Source,
		maxCount: cfg.MaxCount,
	}
	if svc.src == nil {
		svc.src = random.NewSource()
	}
	if svc.maxCount <= 0 {
		svc.maxCount = defaultMaxCount
	}
	return svc, nil
}

func (s *service) Roll(ctx context.Context, channelID string, req treasure.RollRequest) (*treasure.RolledItem, error) {
	st := &rollState{}
	item, err := s.resolve(ctx, req, st)
	if err != nil {
		return nil, err
	}
	s.record(ctx, channelID, req.Category, item)
	return item, nil
}

func (s *service) RollMany(ctx context.Context, channelID string, req treasure.RollRequest, count int) ([]*treasure.RolledItem, error) {
	if count < 1 {
		return nil, rollerr.Invalidf("batch count must be positive, got %d", count)
	}
	if count > s.maxCount {
		return nil, rollerr.Limitedf("batch count %d exceeds the limit of %d", count, s.maxCount)
	}

	type outcome struct {
		item *treasure.RolledItem
		err  error
	}

	// Buffered so abandoned workers never block; the batch
	// short-circuits on the first failure without signaling the rest.
	results := make(chan outcome, count)
	for i := 0; i < count; i++ {
		go func() {
			item, err := s.Roll(ctx, channelID, req)
			results <- outcome{item: item, err: err}
		}()
	}

	items := make([]*treasure.RolledItem, 0, count)
	for i := 0; i < count; i++ {
		out := <-results
		if out.err != nil {
			return nil, out.err
		}
		items = append(items, out.item)
	}
	return items, nil
}

// record stores the roll fire-and-forget; history failures never fail
// the roll itself
func (s *service) record(ctx context.Context, channelID, category string, item *treasure.RolledItem) {
	if s.history == nil || channelID == "" {
		return
	}
	err := s.history.Record(ctx, &rolls.Record{
		ChannelID: channelID,
		Category:  category,
		Name:      item.Name,
		Cost:      item.Cost,
		RolledAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Printf("failed to record roll for channel %s: %v", channelID, err)
	}
}

func (s *service) Recent(ctx context.Context, channelID string, n int) ([]*rolls.Record, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Recent(ctx, channelID, n)
}

// registry snapshots the current catalog set; a reload swaps the
// handle without disturbing draws already holding a snapshot
func (s *service) registry() *catalog.Registry {
	return s.handle.Get()
}

func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	reg := s.registry()
	if _, err := reg.Category.Names(ctx); err != nil {
		return nil, err
	}
	return reg.Categories(), nil
}

func (s *service) ListTags(ctx context.Context) ([]string, error) {
	reg := s.registry()
	armor, err := reg.Armor.Tags(ctx)
	if err != nil {
		return nil, err
	}
	weapon, err := reg.Weapon.Tags(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(armor)+len(weapon))
	for _, t := range armor {
		seen[t] = struct{}{}
	}
	for _, t := range weapon {
		seen[t] = struct{}{}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *service) ListSlots(ctx context.Context) ([]string, error) {
	return s.registry().Wondrous.Slots(ctx)
}

func (s *service) ListClasses(ctx context.Context) ([]string, error) {
	return s.registry().Classes.Names(ctx)
}
