// Package milestone defines the level milestone rules and their default
// payouts. A single level can satisfy several milestone types at once:
// level 50 pays milestone_5, milestone_10, milestone_25 and milestone_50
// each exactly once. regular_level only applies when no modulo rule does.
package milestone

import "fmt"

// Milestone types, one per modulo rule.
const (
	TypeEvery5  = "milestone_5"
	TypeEvery10 = "milestone_10"
	TypeEvery25 = "milestone_25"
	TypeEvery50 = "milestone_50"
	TypeRegular = "regular_level"
)

// Reward is the fixed payout attached to a milestone type.
type Reward struct {
	Cash        int64 `json:"cash"`
	Pokeballs   int   `json:"pokeballs"`
	Masterballs int   `json:"masterballs"`
}

// Key identifies one claimable milestone payout for one level.
type Key struct {
	Type  string
	Level int
}

// String renders the claim-set form, e.g. "milestone_10_50".
func (k Key) String() string {
	return fmt.Sprintf("%s_%d", k.Type, k.Level)
}

// DefaultRewards returns the compiled payout table, overridable from the
// game configuration store.
func DefaultRewards() map[string]Reward {
	return map[string]Reward{
		TypeEvery5:  {Cash: 1500, Pokeballs: 10},
		TypeEvery10: {Cash: 3000, Masterballs: 5},
		TypeEvery25: {Cash: 5000, Pokeballs: 10, Masterballs: 5},
		TypeEvery50: {Cash: 10000, Pokeballs: 20, Masterballs: 15},
		TypeRegular: {Cash: 2500, Pokeballs: 2},
	}
}

// KeysForLevel returns every milestone key a given level satisfies, in
// rule order. Levels below 1 satisfy nothing.
func KeysForLevel(level int) []Key {
	if level < 1 {
		return nil
	}
	var keys []Key
	if level%5 == 0 {
		keys = append(keys, Key{Type: TypeEvery5, Level: level})
	}
	if level%10 == 0 {
		keys = append(keys, Key{Type: TypeEvery10, Level: level})
	}
	if level%25 == 0 {
		keys = append(keys, Key{Type: TypeEvery25, Level: level})
	}
	if level%50 == 0 {
		keys = append(keys, Key{Type: TypeEvery50, Level: level})
	}
	if len(keys) == 0 {
		keys = append(keys, Key{Type: TypeRegular, Level: level})
	}
	return keys
}
