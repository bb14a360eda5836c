package spell

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Ferroin/roll35/internal/catalog"
	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/services/spell/sqlite"
)

// Result is one drawn spell plus the casting context it was drawn
// under
type Result struct {
	Spell *treasure.Spell

	// Class is the concrete class the draw resolved to (synthetic
	// names are resolved to the real class they denote)
	Class string

	// Level is the spell's level for that class
	Level int

	// CasterLevel is the caster level the class needs for that spell
	// level
	CasterLevel int
}

// Service defines the spell query service interface
type Service interface {
	// Random draws a spell matching the filters. An empty class
	// matches any class; a nil level matches any level; every tag
	// must be present.
	Random(ctx context.Context, class string, level *int, tags []string) (*Result, error)

	// CasterLevel resolves the caster level class needs for a spell
	// level
	CasterLevel(ctx context.Context, class string, spellLevel int) (int, error)
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	// Classes is the class catalog the algebra runs over
	Classes *catalog.ClassTable

	// SpellFile is the spell source (spells.json)
	SpellFile string

	// IndexPath locates the SQLite index; ignored when Store is set
	IndexPath string

	// Store overrides the index, mainly for tests
	Store *sqlite.Store

	// ReadyTimeout overrides the gate wait timeout when positive
	ReadyTimeout time.Duration

	// SyncLoad loads inline instead of in the background, so
	// construction errors surface immediately. Used by tests and
	// one-shot tools.
	SyncLoad bool
}

type service struct {
	gate  *catalog.Gate
	store *sqlite.Store

	cfg ServiceConfig

	// populated by load, immutable once the gate opens
	classes    []*resolvedClass
	classIndex map[string]*resolvedClass
	spells     map[string]*treasure.Spell
}

// NewService creates the spell service and starts its load. The class
// algebra runs exactly once per catalog load, before any query is
// served.
func NewService(cfg *ServiceConfig) (Service, error) {
	if cfg == nil || cfg.Classes == nil {
		return nil, rollerr.Invalid("spell service requires a class catalog")
	}

	svc := &service{
		gate: catalog.NewGate("spells"),
		cfg:  *cfg,
	}
	if cfg.ReadyTimeout > 0 {
		svc.gate.SetTimeout(cfg.ReadyTimeout)
	}

	if cfg.Store != nil {
		svc.store = cfg.Store
	} else {
		store, err := sqlite.Open(cfg.IndexPath)
		if err != nil {
			return nil, err
		}
		svc.store = store
	}

	if cfg.SyncLoad {
		if err := svc.load(context.Background()); err != nil {
			return nil, err
		}
		return svc, nil
	}

	go func() {
		if err := svc.load(context.Background()); err != nil {
			log.Printf("spell catalog load failed: %v", err)
		}
	}()
	return svc, nil
}

// load resolves the class algebra, derives per-spell fields, and
// rebuilds the index when the source outdates it. The gate opens only
// on full success.
func (s *service) load(ctx context.Context) error {
	entries, err := s.cfg.Classes.Entries(ctx)
	if err != nil {
		return err
	}

	resolved, err := resolveClasses(entries)
	if err != nil {
		return err
	}
	s.classes = resolved
	s.classIndex = make(map[string]*resolvedClass, len(resolved))
	for _, c := range resolved {
		s.classIndex[c.name] = c
	}

	data, err := os.ReadFile(s.cfg.SpellFile)
	if err != nil {
		return fmt.Errorf("read spell source: %w", err)
	}
	var spells []*treasure.Spell
	if err := json.Unmarshal(data, &spells); err != nil {
		return fmt.Errorf("parse spell source: %w", err)
	}

	s.spells = make(map[string]*treasure.Spell, len(spells))
	for _, sp := range spells {
		deriveSpell(sp, s.classes)
		s.spells[sp.Name] = sp
	}

	if err := s.maybeRebuild(ctx, spells); err != nil {
		return err
	}

	s.gate.Open()
	return nil
}

// maybeRebuild rebuilds the index once when the source file's
// modification timestamp exceeds the stored watermark
func (s *service) maybeRebuild(ctx context.Context, spells []*treasure.Spell) error {
	info, err := os.Stat(s.cfg.SpellFile)
	if err != nil {
		return fmt.Errorf("stat spell source: %w", err)
	}
	mtime := info.ModTime().Unix()

	builtAt, err := s.store.BuiltAt(ctx)
	if err != nil {
		return err
	}
	if mtime <= builtAt {
		return nil
	}

	log.Printf("rebuilding spell index (%d spells)", len(spells))
	return s.store.Rebuild(ctx, spells, s.indexLevels, mtime)
}

// indexLevels lists every queryable class/level pair for a spell: the
// real classes from its source entry plus the derived pseudo-classes
func (s *service) indexLevels(sp *treasure.Spell) map[string]int {
	out := make(map[string]int, len(sp.ClassLevels)+3)
	for class, level := range sp.ClassLevels {
		if _, known := s.classIndex[class]; known {
			out[class] = level
		}
	}
	for _, synthetic := range treasure.SyntheticClasses {
		if level, ok := sp.LevelFor(synthetic); ok {
			out[synthetic] = level
		}
	}
	return out
}

func (s *service) Random(ctx context.Context, class string, level *int, tags []string) (*Result, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return nil, err
	}

	if class != "" {
		if _, ok := s.classIndex[class]; !ok && !isSynthetic(class) {
			return nil, rollerr.Invalidf("unknown class %q", class)
		}
	}

	name, err := s.store.Random(ctx, class, level, tags)
	if err != nil {
		if rollerr.GetCode(err) == rollerr.CodeNoMatch {
			return nil, err
		}
		return nil, rollerr.WrapWithCode(err, rollerr.CodeFailed, "spell index query failed")
	}

	sp, ok := s.spells[name]
	if !ok {
		return nil, rollerr.Failedf("spell index returned unknown spell %q", name)
	}

	resultClass := class
	if resultClass == "" {
		resultClass = treasure.ClassMinimum
	}
	concrete := resultClass
	switch resultClass {
	case treasure.ClassMinimum:
		concrete = sp.Minimum
	case treasure.ClassSpellpageArcane:
		concrete = sp.SpellpageArcane
	case treasure.ClassSpellpageDivine:
		concrete = sp.SpellpageDivine
	}
	spellLevel, ok := sp.LevelFor(concrete)
	if !ok {
		return nil, rollerr.Failedf("spell %q has no level for class %q", name, concrete)
	}

	casterLevel := 0
	if rc, ok := s.classIndex[concrete]; ok {
		if cl, ok := rc.casterLevelFor(spellLevel); ok {
			casterLevel = cl
		}
	}

	return &Result{
		Spell:       sp,
		Class:       concrete,
		Level:       spellLevel,
		CasterLevel: casterLevel,
	}, nil
}

func (s *service) CasterLevel(ctx context.Context, class string, spellLevel int) (int, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return 0, err
	}

	rc, ok := s.classIndex[class]
	if !ok {
		return 0, rollerr.NoMatchf("unknown class %q", class)
	}
	cl, ok := rc.casterLevelFor(spellLevel)
	if !ok {
		return 0, rollerr.NoMatchf("class %q cannot cast level %d spells", class, spellLevel)
	}
	return cl, nil
}

func isSynthetic(class string) bool {
	for _, s := range treasure.SyntheticClasses {
		if class == s {
			return true
		}
	}
	return false
}
