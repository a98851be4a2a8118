package models

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// Surface represents a tennis court surface
type Surface string

const (
	SurfaceHard   Surface = "hard"
	SurfaceClay   Surface = "clay"
	SurfaceGrass  Surface = "grass"
	SurfaceCarpet Surface = "carpet"
)

// Tour represents a tennis tour
type Tour string

const (
	TourATP Tour = "atp"
	TourWTA Tour = "wta"
)

// AllSurfaces lists every surface the rating engine maintains sub-ratings for
var AllSurfaces = []Surface{SurfaceHard, SurfaceClay, SurfaceGrass, SurfaceCarpet}

// surfaceAliases maps raw surface strings from data sources to canonical surfaces
var surfaceAliases = map[string]Surface{
	"hard":         SurfaceHard,
	"hard court":   SurfaceHard,
	"hardcourt":    SurfaceHard,
	"indoor hard":  SurfaceHard,
	"outdoor hard": SurfaceHard,
	"clay":         SurfaceClay,
	"clay court":   SurfaceClay,
	"grass":        SurfaceGrass,
	"grass court":  SurfaceGrass,
	"carpet":       SurfaceCarpet,
}

// ParseSurface normalizes a raw surface string to a canonical Surface.
// Unknown or empty values resolve to hard, the most common surface.
func ParseSurface(raw string) Surface {
	if s, ok := surfaceAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return SurfaceHard
}

// ParseTour normalizes a raw tour string, defaulting to ATP
func ParseTour(raw string) Tour {
	if strings.EqualFold(strings.TrimSpace(raw), string(TourWTA)) {
		return TourWTA
	}
	return TourATP
}

// NormalizePlayerName normalizes a player name for consistent keying
// (trimmed, title-cased, inner whitespace collapsed)
func NormalizePlayerName(name string) string {
	fields := strings.Fields(name)
	for i, f := range fields {
		r := []rune(strings.ToLower(f))
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}

// MatchKey builds an order-independent identity for a match from the two
// player names. Used to deduplicate bets on the same match across bookmakers.
func MatchKey(player1, player2 string) string {
	names := []string{NormalizePlayerName(player1), NormalizePlayerName(player2)}
	sort.Strings(names)
	return names[0] + "|" + names[1]
}

// MatchRecord represents a completed match outcome as consumed by the rating
// engine. Records must be fed to the engine in non-decreasing date order.
type MatchRecord struct {
	Winner      string    `json:"winner" validate:"required"`
	Loser       string    `json:"loser" validate:"required"`
	WinnerScore string    `json:"winner_score,omitempty"` // e.g. "6-4 6-3", empty when unknown
	LoserScore  string    `json:"loser_score,omitempty"`
	Surface     Surface   `json:"surface"`
	Tour        Tour      `json:"tour"`
	MatchDate   time.Time `json:"match_date" validate:"required"`
}
