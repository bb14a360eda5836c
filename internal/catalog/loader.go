package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
)

// Default ordnance cost constants, used when a catalog file does not
// override them
const (
	DefaultArmorMasterwork  = 150
	DefaultArmorUnitCost    = 1000
	DefaultWeaponMasterwork = 300
	DefaultWeaponUnitCost   = 2000
)

// LoaderConfig holds configuration for a catalog load
type LoaderConfig struct {
	// DataDir is the catalog source directory
	DataDir string

	// ReadyTimeout overrides the gate wait timeout when positive
	ReadyTimeout time.Duration

	// Workers bounds the parse pool; defaults to GOMAXPROCS
	Workers int
}

// Loader builds a registry from a catalog data directory. Parsing is
// CPU-bound, so it runs on a bounded worker pool off the
// request-serving path; each table's gate opens as its parse finishes.
type Loader struct {
	cfg LoaderConfig
}

// NewLoader creates a loader
func NewLoader(cfg *LoaderConfig) *Loader {
	if cfg == nil {
		cfg = &LoaderConfig{}
	}
	return &Loader{cfg: *cfg}
}

// Build scans the data directory and constructs the registry with all
// gates closed. Cheap: it reads directory listings, not file contents.
func (l *Loader) Build() (*Registry, error) {
	dir := l.cfg.DataDir
	if dir == "" {
		return nil, rollerr.Invalid("catalog data directory is required")
	}

	reg := &Registry{
		Category:  NewCategoryTable(),
		Ranked:    make(map[string]*RankedTable),
		Compound:  make(map[string]*CompoundTable),
		Armor:     NewOrdnanceTable(CategoryArmor, DefaultArmorMasterwork, DefaultArmorUnitCost),
		Weapon:    NewOrdnanceTable(CategoryWeapon, DefaultWeaponMasterwork, DefaultWeaponUnitCost),
		Wondrous:  NewWondrousTable(),
		Classes:   NewClassTable(),
		SpellFile: filepath.Join(dir, "spells.json"),
	}

	for _, sub := range []string{"ranked", "compound"} {
		entries, err := os.ReadDir(filepath.Join(dir, sub))
		if err != nil {
			return nil, fmt.Errorf("scan %s catalogs: %w", sub, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ".json")
			if sub == "ranked" {
				reg.Ranked[name] = NewRankedTable(name)
			} else {
				// class requirement is read from the file at parse
				// time; the table starts permissive
				reg.Compound[name] = NewCompoundTable(name, false)
			}
		}
	}

	if l.cfg.ReadyTimeout > 0 {
		for _, g := range registryGates(reg) {
			g.SetTimeout(l.cfg.ReadyTimeout)
		}
	}

	return reg, nil
}

// Run parses every catalog file, populating reg and opening gates as
// tables complete. A parse failure leaves that table's gate closed so
// readers see NotReady rather than partial data.
func (l *Loader) Run(ctx context.Context, reg *Registry) error {
	dir := l.cfg.DataDir

	g, ctx := errgroup.WithContext(ctx)
	workers := l.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)

	g.Go(func() error {
		return l.parseCategory(filepath.Join(dir, "category.json"), reg.Category)
	})
	g.Go(func() error {
		return l.parseClasses(filepath.Join(dir, "classes.json"), reg.Classes)
	})
	g.Go(func() error {
		return l.parseWondrous(filepath.Join(dir, "wondrous.json"), reg.Wondrous)
	})
	g.Go(func() error {
		return l.parseOrdnance(filepath.Join(dir, "armor.json"), reg.Armor)
	})
	g.Go(func() error {
		return l.parseOrdnance(filepath.Join(dir, "weapon.json"), reg.Weapon)
	})
	for name, table := range reg.Ranked {
		name, table := name, table
		g.Go(func() error {
			return l.parseRanked(filepath.Join(dir, "ranked", name+".json"), table)
		})
	}
	for name, table := range reg.Compound {
		name, table := name, table
		g.Go(func() error {
			return l.parseCompound(filepath.Join(dir, "compound", name+".json"), table)
		})
	}

	return g.Wait()
}

// Load builds and fully parses a registry before returning
func Load(ctx context.Context, cfg *LoaderConfig) (*Registry, error) {
	l := NewLoader(cfg)
	reg, err := l.Build()
	if err != nil {
		return nil, err
	}
	if err := l.Run(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadAsync builds the registry and parses it in the background.
// Callers get the registry immediately; reads block on the per-table
// gates until loading completes.
func LoadAsync(ctx context.Context, cfg *LoaderConfig) (*Registry, error) {
	l := NewLoader(cfg)
	reg, err := l.Build()
	if err != nil {
		return nil, err
	}
	go func() {
		if err := l.Run(ctx, reg); err != nil {
			log.Printf("catalog load failed: %v", err)
		}
	}()
	return reg, nil
}

func registryGates(reg *Registry) []*Gate {
	gates := []*Gate{
		reg.Category.Gate(),
		reg.Armor.Gate(),
		reg.Weapon.Gate(),
		reg.Wondrous.Gate(),
		reg.Classes.Gate(),
	}
	for _, t := range reg.Ranked {
		gates = append(gates, t.Gate())
	}
	for _, t := range reg.Compound {
		gates = append(gates, t.Gate())
	}
	return gates
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func parseRankKey(key string) (treasure.Rank, error) {
	r := treasure.Rank(key)
	if !r.Valid() {
		return "", rollerr.Invalidf("unknown rank %q", key)
	}
	return r, nil
}

func parseSubrankKey(key string, allowLeast bool) (treasure.Subrank, error) {
	s := treasure.Subrank(key)
	if !s.Valid() {
		return "", rollerr.Invalidf("unknown subrank %q", key)
	}
	if s == treasure.SubrankLeast && !allowLeast {
		return "", rollerr.Invalid("subrank least is only valid for slotless wondrous items")
	}
	return s, nil
}

func buildList(entries []treasure.WeightedEntry[*treasure.Item]) (*treasure.WeightedList, error) {
	list := treasure.NewWeightedList()
	for _, e := range entries {
		if err := list.Insert(e.Weight, e.Value); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (l *Loader) parseCategory(path string, table *CategoryTable) error {
	var raw map[string][]treasure.WeightedEntry[string]
	if err := readJSON(path, &raw); err != nil {
		return err
	}

	for key, entries := range raw {
		rank, err := parseRankKey(key)
		if err != nil {
			return fmt.Errorf("category.json: %w", err)
		}
		for _, e := range entries {
			if e.Weight < 1 {
				return fmt.Errorf("category.json: category %q under %s has weight %d", e.Value, rank, e.Weight)
			}
		}
		table.Set(rank, entries)
	}

	table.Gate().Open()
	return nil
}

func (l *Loader) parseRanked(path string, table *RankedTable) error {
	var raw map[string]map[string][]treasure.WeightedEntry[*treasure.Item]
	if err := readJSON(path, &raw); err != nil {
		return err
	}

	for rankKey, bySubrank := range raw {
		rank, err := parseRankKey(rankKey)
		if err != nil {
			return fmt.Errorf("%s: %w", table.Name(), err)
		}
		for subKey, entries := range bySubrank {
			subrank, err := parseSubrankKey(subKey, false)
			if err != nil {
				return fmt.Errorf("%s: %w", table.Name(), err)
			}
			list, err := buildList(entries)
			if err != nil {
				return fmt.Errorf("%s %s %s: %w", table.Name(), rank, subrank, err)
			}
			table.Set(rank, subrank, list)
		}
	}

	table.Gate().Open()
	return nil
}

type compoundFile struct {
	ClassRequired bool                                                `json:"class_required"`
	Ranks         map[string][]treasure.WeightedEntry[*treasure.Item] `json:"ranks"`
}

func (l *Loader) parseCompound(path string, table *CompoundTable) error {
	var raw compoundFile
	if err := readJSON(path, &raw); err != nil {
		return err
	}

	table.classRequired = raw.ClassRequired
	for rankKey, entries := range raw.Ranks {
		rank, err := parseRankKey(rankKey)
		if err != nil {
			return fmt.Errorf("%s: %w", table.Name(), err)
		}
		list, err := buildList(entries)
		if err != nil {
			return fmt.Errorf("%s %s: %w", table.Name(), rank, err)
		}
		table.Set(rank, list)
	}

	table.Gate().Open()
	return nil
}

type ordnanceFile struct {
	Masterwork  float64                                                          `json:"masterwork,omitempty"`
	EnchantCost float64                                                          `json:"enchant_cost,omitempty"`
	Base        []treasure.WeightedEntry[*treasure.BaseItem]                     `json:"base"`
	Enchants    map[string]map[string][]treasure.WeightedEntry[*treasure.Enchant] `json:"enchants"`
	Patterns    map[string]map[string][]treasure.WeightedEntry[*treasure.Pattern] `json:"patterns"`
	Specific    map[string]map[string]map[string][]treasure.WeightedEntry[*treasure.Item] `json:"specific,omitempty"`
}

func (l *Loader) parseOrdnance(path string, table *OrdnanceTable) error {
	var raw ordnanceFile
	if err := readJSON(path, &raw); err != nil {
		return err
	}

	name := table.Name()
	if raw.Masterwork > 0 {
		table.masterwork = raw.Masterwork
	}
	if raw.EnchantCost > 0 {
		table.unitCost = raw.EnchantCost
	}

	for _, e := range raw.Base {
		if e.Weight < 1 || e.Value == nil {
			return fmt.Errorf("%s: malformed base item entry", name)
		}
		table.AddBase(e.Weight, e.Value)
	}

	for group, byBonus := range raw.Enchants {
		for bonusKey, entries := range byBonus {
			bonus, err := strconv.Atoi(bonusKey)
			if err != nil || bonus < 1 {
				return fmt.Errorf("%s: bad enchant bonus key %q in group %q", name, bonusKey, group)
			}
			for _, e := range entries {
				if e.Weight < 1 || e.Value == nil {
					return fmt.Errorf("%s: malformed enchant entry in group %q", name, group)
				}
				if err := e.Value.Validate(); err != nil {
					return fmt.Errorf("%s group %q: %w", name, group, err)
				}
				table.AddEnchant(group, bonus, e.Weight, e.Value)
			}
		}
	}

	for rankKey, bySubrank := range raw.Patterns {
		rank, err := parseRankKey(rankKey)
		if err != nil {
			return fmt.Errorf("%s patterns: %w", name, err)
		}
		for subKey, entries := range bySubrank {
			subrank, err := parseSubrankKey(subKey, false)
			if err != nil {
				return fmt.Errorf("%s patterns: %w", name, err)
			}
			for _, e := range entries {
				if e.Weight < 1 || e.Value == nil {
					return fmt.Errorf("%s: malformed pattern entry under %s %s", name, rank, subrank)
				}
				if err := e.Value.Validate(); err != nil {
					return fmt.Errorf("%s %s %s: %w", name, rank, subrank, err)
				}
				table.AddPattern(rank, subrank, e.Weight, e.Value)
			}
		}
	}

	for group, byRank := range raw.Specific {
		for rankKey, bySubrank := range byRank {
			rank, err := parseRankKey(rankKey)
			if err != nil {
				return fmt.Errorf("%s specific %q: %w", name, group, err)
			}
			for subKey, entries := range bySubrank {
				subrank, err := parseSubrankKey(subKey, false)
				if err != nil {
					return fmt.Errorf("%s specific %q: %w", name, group, err)
				}
				list, err := buildList(entries)
				if err != nil {
					return fmt.Errorf("%s specific %q %s %s: %w", name, group, rank, subrank, err)
				}
				table.SetSpecific(group, rank, subrank, list)
			}
		}
	}

	table.Gate().Open()
	return nil
}

type wondrousFile struct {
	Slots map[string]map[string]map[string][]treasure.WeightedEntry[*treasure.Item] `json:"slots"`
}

func (l *Loader) parseWondrous(path string, table *WondrousTable) error {
	var raw wondrousFile
	if err := readJSON(path, &raw); err != nil {
		return err
	}

	for slot, byRank := range raw.Slots {
		for rankKey, bySubrank := range byRank {
			rank, err := parseRankKey(rankKey)
			if err != nil {
				return fmt.Errorf("wondrous %q: %w", slot, err)
			}
			for subKey, entries := range bySubrank {
				subrank, err := parseSubrankKey(subKey, slot == SlotSlotless)
				if err != nil {
					return fmt.Errorf("wondrous %q: %w", slot, err)
				}
				list, err := buildList(entries)
				if err != nil {
					return fmt.Errorf("wondrous %q %s %s: %w", slot, rank, subrank, err)
				}
				table.Set(slot, rank, subrank, list)
			}
		}
	}

	table.Gate().Open()
	return nil
}

type classesFile struct {
	Classes []*treasure.ClassEntry `json:"classes"`
}

func (l *Loader) parseClasses(path string, table *ClassTable) error {
	var raw classesFile
	if err := readJSON(path, &raw); err != nil {
		return err
	}

	for _, entry := range raw.Classes {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("classes.json: %w", err)
		}
		if err := table.Add(entry); err != nil {
			return fmt.Errorf("classes.json: %w", err)
		}
	}

	table.Gate().Open()
	return nil
}
