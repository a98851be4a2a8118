package rating

import (
	"strconv"
	"strings"
)

// setsMultiplier derives the margin-of-victory K multiplier from the
// winner's set-score string (e.g. "6-4 6-3"). Straight-set wins scale the
// update: 2-0 in a best-of-3 gives 1.2, 3-0 in a best-of-5 gives 1.3, any
// contested result gives 1.0. Malformed or absent scores never fail; they
// fall back to the neutral multiplier.
func setsMultiplier(winnerScore string) float64 {
	if strings.TrimSpace(winnerScore) == "" {
		return 1.0
	}

	setsWon := 0
	for _, set := range strings.Fields(winnerScore) {
		parts := strings.SplitN(set, "-", 2)
		if len(parts) != 2 {
			continue
		}
		winnerGames, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		loserGames, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		if winnerGames > loserGames {
			setsWon++
		}
	}

	switch setsWon {
	case 2:
		return 1.2
	case 3:
		return 1.3
	default:
		return 1.0
	}
}
