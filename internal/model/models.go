// Package model defines the data models for the collection game core.
package model

import "time"

// Rarity tiers for species, draws and expedition templates.
const (
	RarityNormal    = "normal"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Ball kinds, stored as item slugs in the inventory.
const (
	BallPokeball   = "pokeball"
	BallMasterball = "masterball"
)

// MaxItemQuantity is the upper bound for any inventory line.
const MaxItemQuantity = 999

// MaxStar is the highest upgrade rank a collection entry can reach.
const MaxStar = 6

// Player represents a game account with its economy and progression state.
type Player struct {
	ID                    int64      `db:"id"`
	Username              string     `db:"username"`
	Cash                  int64      `db:"cash"`
	Experience            int64      `db:"experience"`
	Level                 int        `db:"level"`
	ClaimedLevelRewards   []string   `db:"claimed_level_rewards"`
	TowerLevel            int        `db:"tower_level"`
	TowerDefeatsRemaining int        `db:"tower_defeats_remaining"`
	TowerLastReset        time.Time  `db:"tower_last_reset"`
	DailyBonusClaimedAt   *time.Time `db:"daily_bonus_claimed_at"`
	FriendsCount          int        `db:"friends_count"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// Species is an immutable catalog row describing a drawable Pokémon.
type Species struct {
	ID      int64    `db:"id"`
	Name    string   `db:"name"`
	Rarity  string   `db:"rarity"`
	IsShiny bool     `db:"is_shiny"`
	HP      int      `db:"hp"`
	Attack  int      `db:"attack"`
	Defense int      `db:"defense"`
	Types   []string `db:"types"`
}

// CollectionEntry is a caught Pokémon owned by exactly one player.
type CollectionEntry struct {
	ID           int64     `db:"id"`
	PlayerID     int64     `db:"player_id"`
	SpeciesID    int64     `db:"species_id"`
	Level        int       `db:"level"`
	Star         int       `db:"star"`
	IsInTeam     bool      `db:"is_in_team"`
	TeamPosition *int      `db:"team_position"`
	IsFavorite   bool      `db:"is_favorite"`
	HPLeft       int       `db:"hp_left"`
	ObtainedAt   time.Time `db:"obtained_at"`

	// Species is populated by queries that join the catalog.
	Species *Species `db:"-"`
}

// InventoryLine is a (player, item) pair with a bounded quantity.
type InventoryLine struct {
	PlayerID  int64     `db:"player_id"`
	ItemSlug  string    `db:"item_slug"`
	Quantity  int       `db:"quantity"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Reward entry types.
const (
	RewardCash       = "cash"
	RewardXP         = "xp"
	RewardPokeball   = "pokeball"
	RewardMasterball = "masterball"
	RewardItem       = "item"
)

// RewardEntry is one element of a reward list. Cash and xp use Amount,
// ball and item entries use Quantity, and item entries carry an ItemSlug.
type RewardEntry struct {
	Type     string `json:"type"`
	Amount   int64  `json:"amount,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	ItemSlug string `json:"item_slug,omitempty"`
}

// Expedition assignment lifecycle states.
const (
	ExpeditionAvailable  = "available"
	ExpeditionInProgress = "in_progress"
)

// Requirement entry types for expedition templates.
const (
	RequirementRarity = "rarity"
	RequirementType   = "type"
)

// RequirementEntry describes one team-composition constraint of a template.
type RequirementEntry struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Quantity int    `json:"quantity"`
}

// ExpeditionTemplate is a catalog mission definition.
type ExpeditionTemplate struct {
	ID           int64              `db:"id"`
	Name         string             `db:"name"`
	Rarity       string             `db:"rarity"`
	Duration     time.Duration      `db:"duration"`
	Requirements []RequirementEntry `db:"requirements"`
	Rewards      []RewardEntry      `db:"rewards"`
}

// ExpeditionAssignment is a per-player per-day instance of a template.
type ExpeditionAssignment struct {
	ID           int64      `db:"id"`
	PlayerID     int64      `db:"player_id"`
	TemplateID   int64      `db:"template_id"`
	AssignedDate time.Time  `db:"assigned_date"`
	Status       string     `db:"status"`
	StartedAt    *time.Time `db:"started_at"`
	EndsAt       *time.Time `db:"ends_at"`

	Template *ExpeditionTemplate `db:"-"`
}

// ExpeditionParticipant links a collection entry to an in-progress
// assignment. An unclaimed row marks the entry as busy.
type ExpeditionParticipant struct {
	ID           int64      `db:"id"`
	AssignmentID int64      `db:"assignment_id"`
	EntryID      int64      `db:"entry_id"`
	StartedAt    time.Time  `db:"started_at"`
	EndsAt       time.Time  `db:"ends_at"`
	ClaimedAt    *time.Time `db:"claimed_at"`
}

// TowerLevel is a catalog row for one infernal tower floor.
type TowerLevel struct {
	Level   int           `db:"level"`
	TeamCP  int64         `db:"team_cp"`
	Rewards []RewardEntry `db:"rewards"`
}

// Success definition types.
const (
	SuccessPokedex    = "pokedex"
	SuccessCapture    = "capture"
	SuccessRarity     = "rarity"
	SuccessTower      = "tower"
	SuccessExpedition = "expedition"
	SuccessFriend     = "friend"
)

// SuccessRequirements holds the predicate parameters of a success definition.
type SuccessRequirements struct {
	Count  int    `json:"count"`
	Rarity string `json:"rarity,omitempty"`
	Shiny  bool   `json:"shiny,omitempty"`
}

// SuccessDefinition is a catalog achievement row.
type SuccessDefinition struct {
	ID           int64               `db:"id"`
	Key          string              `db:"key"`
	Type         string              `db:"type"`
	Requirements SuccessRequirements `db:"requirements"`
	RewardCash   int64               `db:"reward_cash"`
	RewardXP     int64               `db:"reward_xp"`
}

// SuccessUnlock records that a player satisfied a success, at most once.
type SuccessUnlock struct {
	PlayerID   int64      `db:"player_id"`
	SuccessID  int64      `db:"success_id"`
	UnlockedAt time.Time  `db:"unlocked_at"`
	IsClaimed  bool       `db:"is_claimed"`
	ClaimedAt  *time.Time `db:"claimed_at"`
}

// PromoCode is a redeemable code carrying a reward list.
type PromoCode struct {
	Code    string        `db:"code"`
	Rewards []RewardEntry `db:"rewards"`
	Active  bool          `db:"active"`
}

// DrawSummary describes one gacha result for the caller.
type DrawSummary struct {
	EntryID     int64    `json:"entry_id"`
	SpeciesName string   `json:"species_name"`
	Rarity      string   `json:"rarity"`
	IsShiny     bool     `json:"is_shiny"`
	Types       []string `json:"types"`
}

// Failure reasons attached to unsuccessful results.
const (
	ReasonValidation   = "validation"
	ReasonInsufficient = "insufficient_resource"
	ReasonBusy         = "busy"
	ReasonBudget       = "budget_exhausted"
)

// Result is the boundary contract every mutating engine operation returns.
// Expected gameplay failures come back as Success=false with a Reason;
// infrastructure and catalog-integrity faults are returned as errors.
type Result struct {
	Success bool          `json:"success"`
	Reason  string        `json:"reason,omitempty"`
	Message string        `json:"message"`
	Rewards []RewardEntry `json:"rewards,omitempty"`
	Draws   []DrawSummary `json:"draws,omitempty"`
}

// Ok builds a successful result.
func Ok(message string, rewards ...RewardEntry) *Result {
	return &Result{Success: true, Message: message, Rewards: rewards}
}

// Fail builds a rejected result with a failure reason.
func Fail(reason, message string) *Result {
	return &Result{Success: false, Reason: reason, Message: message}
}
