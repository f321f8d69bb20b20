package main

import (
	"testing"

	"github.com/addonindex/idxstat/internal/config"
	"github.com/addonindex/idxstat/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	applyFlags(cfg, options{url: "http://localhost:8080"})
	assert.Equal(t, "http://localhost:8080", cfg.Server.URL)
	assert.Equal(t, config.StrategyFetch, cfg.Source.Strategy)
	assert.True(t, cfg.IsConfigured())

	cfg = config.DefaultConfig()
	applyFlags(cfg, options{file: "status.json"})
	assert.Equal(t, config.StrategyLocal, cfg.Source.Strategy)
	assert.Equal(t, "status.json", cfg.Source.File)

	cfg = config.DefaultConfig()
	applyFlags(cfg, options{})
	assert.False(t, cfg.IsConfigured())
}

func TestBadgePolicy(t *testing.T) {
	assert.Equal(t, service.BadgeLegacy, badgePolicy(config.RowBadgesLegacy))
	assert.Equal(t, service.BadgeStrict, badgePolicy(config.RowBadgesStrict))
}
