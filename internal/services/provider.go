package services

import (
	"github.com/Ferroin/roll35/internal/catalog"
	"github.com/Ferroin/roll35/internal/repositories/rolls"
	rollService "github.com/Ferroin/roll35/internal/services/roll"
	spellService "github.com/Ferroin/roll35/internal/services/spell"
)

// Provider holds all service instances
type Provider struct {
	RollService  rollService.Service
	SpellService spellService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	Registry          *catalog.Registry
	Handle            *catalog.Handle
	SpellIndexPath    string
	HistoryRepository rolls.Repository
	MaxCount          int
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) (*Provider, error) {
	// Use in-memory history if none provided
	historyRepo := cfg.HistoryRepository
	if historyRepo == nil {
		historyRepo = rolls.NewInMemoryRepository()
	}

	spellSvc, err := spellService.NewService(&spellService.ServiceConfig{
		Classes:   cfg.Registry.Classes,
		SpellFile: cfg.Registry.SpellFile,
		IndexPath: cfg.SpellIndexPath,
	})
	if err != nil {
		return nil, err
	}

	rollSvc, err := rollService.NewService(&rollService.ServiceConfig{
		Registry: cfg.Registry,
		Handle:   cfg.Handle,
		Spells:   spellSvc,
		History:  historyRepo,
		MaxCount: cfg.MaxCount,
	})
	if err != nil {
		return nil, err
	}

	return &Provider{
		RollService:  rollSvc,
		SpellService: spellSvc,
	}, nil
}
