// Package tower implements the infernal tower combat math.
package tower

import "math"

// Steepness of the logistic win-chance curve. At equal power the chance is
// 50%; a 10,000 CP advantage moves it to roughly 82%.
const curveSteepness = 0.00015

// Chance computes the win percentage for a tower attempt from the
// attacker's aggregate team power and the floor's fixed opposing power.
// The result is rounded to the nearest integer in [0, 100]. A non-positive
// user power always yields 0.
func Chance(userPower, opponentPower int64) int {
	if userPower <= 0 {
		return 0
	}
	diff := float64(userPower - opponentPower)
	chance := 100 / (1 + math.Exp(-curveSteepness*diff))
	return int(math.Round(chance))
}
