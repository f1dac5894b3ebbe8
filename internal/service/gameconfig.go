// Package service provides business logic implementations.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"poke-collect/internal/game/milestone"
	"poke-collect/internal/game/rarity"
	"poke-collect/internal/game/xp"
	"poke-collect/internal/repository"
)

// Configuration store addresses, category then key.
const (
	configBallTables    = "rarity_probabilities"
	configBallTablesKey = "ball_types"
	configMilestones    = "level_rewards"
	configMilestonesKey = "milestones"
	configXPRewards     = "xp_rewards"
	configXPRewardsKey  = "rarity_bonuses"
	configLevelCurve    = "level_curve"
	configLevelCurveKey = "thresholds"
)

// defaultCurveMaxLevel bounds the fallback level curve when no curve is
// configured.
const defaultCurveMaxLevel = 200

// GameConfigService reads tunable game parameters from the configuration
// store, caching raw values in process. Callers that write new configuration
// must invoke ClearCache afterwards. Absent values fall back to the compiled
// defaults.
type GameConfigService struct {
	repo *repository.GameConfigRepository

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewGameConfigService creates a new GameConfigService instance.
func NewGameConfigService(repo *repository.GameConfigRepository) *GameConfigService {
	return &GameConfigService{
		repo:  repo,
		cache: make(map[string][]byte),
	}
}

// ClearCache drops every cached value so the next read hits the store.
func (s *GameConfigService) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()
}

// value returns the raw JSON for category/key, or found=false when the
// store has no row. Negative lookups are not cached so freshly seeded
// values become visible without a cache clear.
func (s *GameConfigService) value(ctx context.Context, category, key string) ([]byte, bool, error) {
	cacheKey := category + "/" + key

	s.mu.RLock()
	raw, ok := s.cache[cacheKey]
	s.mu.RUnlock()
	if ok {
		return raw, true, nil
	}

	raw, err := s.repo.Get(ctx, category, key)
	if err != nil {
		if errors.Is(err, repository.ErrConfigNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	s.mu.Lock()
	s.cache[cacheKey] = raw
	s.mu.Unlock()
	return raw, true, nil
}

// BallTables returns the per-ball rarity draw tables.
func (s *GameConfigService) BallTables(ctx context.Context) (map[string]rarity.Table, error) {
	raw, ok, err := s.value(ctx, configBallTables, configBallTablesKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return rarity.DefaultBallTables(), nil
	}

	var tables map[string]rarity.Table
	if err := json.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("invalid ball table configuration: %w", err)
	}
	for name, table := range tables {
		if err := table.Validate(); err != nil {
			return nil, fmt.Errorf("invalid ball table %q: %w", name, err)
		}
	}
	return tables, nil
}

// MilestoneRewards returns the payout per milestone type.
func (s *GameConfigService) MilestoneRewards(ctx context.Context) (map[string]milestone.Reward, error) {
	raw, ok, err := s.value(ctx, configMilestones, configMilestonesKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return milestone.DefaultRewards(), nil
	}

	var rewards map[string]milestone.Reward
	if err := json.Unmarshal(raw, &rewards); err != nil {
		return nil, fmt.Errorf("invalid milestone configuration: %w", err)
	}
	return rewards, nil
}

// XPTables returns the experience tables for new collection entries.
func (s *GameConfigService) XPTables(ctx context.Context) (xp.Tables, error) {
	raw, ok, err := s.value(ctx, configXPRewards, configXPRewardsKey)
	if err != nil {
		return xp.Tables{}, err
	}
	if !ok {
		return xp.DefaultTables(), nil
	}

	var tables xp.Tables
	if err := json.Unmarshal(raw, &tables); err != nil {
		return xp.Tables{}, fmt.Errorf("invalid xp configuration: %w", err)
	}
	return tables, nil
}

// LevelThresholds returns the cumulative experience curve.
func (s *GameConfigService) LevelThresholds(ctx context.Context) ([]int64, error) {
	raw, ok, err := s.value(ctx, configLevelCurve, configLevelCurveKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return xp.DefaultThresholds(defaultCurveMaxLevel), nil
	}

	var thresholds []int64
	if err := json.Unmarshal(raw, &thresholds); err != nil {
		return nil, fmt.Errorf("invalid level curve configuration: %w", err)
	}
	return thresholds, nil
}
