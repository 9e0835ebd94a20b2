package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"

	"rgsearch/internal/config"
	"rgsearch/internal/eventbus"
	"rgsearch/internal/scopes"
)

// workspace is the state shared by every command: the loaded config, the
// bus and the scope manager whose changes are saved back to the config
type workspace struct {
	configSvc config.ConfigService
	cfg       *config.Config
	bus       eventbus.EventBus
	scopes    scopes.ScopeManager
}

func openWorkspace(c *cli.Context) (*workspace, error) {
	configSvc := config.NewConfigService()
	if path := c.String("config"); path != "" {
		configSvc = config.NewConfigServiceWithPath(path)
	}

	cfg, err := configSvc.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Printf("Loaded config from %s", configSvc.Path())

	bus := eventbus.New()
	ws := &workspace{
		configSvc: configSvc,
		cfg:       cfg,
		bus:       bus,
		scopes:    scopes.NewScopeManager(bus, cfg.Scopes, cfg.Last()),
	}

	// Subscribe to config changes to save automatically
	bus.Subscribe(eventbus.EventConfigChanged, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigChangedEvent); ok {
			cfg.ApplyChange(event)
			if err := configSvc.Save(cfg); err != nil {
				log.Printf("Failed to save config: %v", err)
			} else {
				log.Printf("Config saved to %s", configSvc.Path())
			}
		}
	})

	return ws, nil
}

// save writes the config directly, for changes that do not go through the bus
func (ws *workspace) save() error {
	if err := ws.configSvc.Save(ws.cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// close drains pending events, including config saves
func (ws *workspace) close() {
	ws.bus.Close()
}
