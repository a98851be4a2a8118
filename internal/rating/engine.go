// Package rating implements the surface-aware Elo rating engine.
package rating

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/repository"
)

// Config holds the rating engine tunables
type Config struct {
	KFactor             float64
	DefaultRating       float64
	SurfaceAdvantage    float64
	MonthlyDecayRate    float64
	DecayGraceMonths    int
	MinRatingAfterDecay float64
}

// DefaultConfig returns the standard tennis Elo parameters. The K-factor is
// higher than typical team-sport systems because individual results carry
// more signal about a single player.
func DefaultConfig() Config {
	return Config{
		KFactor:             32,
		DefaultRating:       1500,
		SurfaceAdvantage:    50,
		MonthlyDecayRate:    0.015,
		DecayGraceMonths:    3,
		MinRatingAfterDecay: 1200,
	}
}

// playerState is the engine's in-memory rating state for one player
type playerState struct {
	overall   float64
	surfaces  map[models.Surface]float64
	lastMatch *time.Time
}

// Engine owns all player rating state. It is single-writer: Apply must be
// called from one goroutine in chronological match order, while read methods
// may be served concurrently.
type Engine struct {
	cfg    Config
	repo   repository.RatingRepository
	logger *logrus.Logger

	mu            sync.RWMutex
	players       map[string]*playerState
	lastProcessed time.Time

	// now is replaceable in tests so decay can be pinned to a fixed clock
	now func() time.Time
}

// NewEngine creates an engine and restores state from the repository.
// A repository parse failure is returned to the caller, who decides whether
// to treat it as a cold start or abort.
func NewEngine(ctx context.Context, cfg Config, repo repository.RatingRepository, logger *logrus.Logger) (*Engine, error) {
	e := &Engine{
		cfg:     cfg,
		repo:    repo,
		logger:  logger,
		players: make(map[string]*playerState),
		now:     time.Now,
	}

	if repo != nil {
		snapshot, err := repo.Load(ctx)
		if err != nil {
			return nil, err
		}
		e.restore(snapshot)
	}

	return e, nil
}

// GetRating returns the player's current rating with time decay applied.
// Resolution order: surface-specific rating when surface is non-empty and
// present, else overall, else the default for unknown players.
func (e *Engine) GetRating(player string, surface models.Surface) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ratingLocked(models.NormalizePlayerName(player), surface, true)
}

// ratingLocked resolves a rating under the caller's lock. decayed selects
// between the read-time decayed value and the raw stored value (updates use
// the stored value, per the persistence contract).
func (e *Engine) ratingLocked(key string, surface models.Surface, decayed bool) float64 {
	state, ok := e.players[key]
	if !ok {
		return e.cfg.DefaultRating
	}

	base := state.overall
	if surface != "" {
		if r, ok := state.surfaces[surface]; ok {
			base = r
		}
	}

	if decayed && state.lastMatch != nil {
		return e.applyDecay(base, *state.lastMatch)
	}
	return base
}

// applyDecay reduces a rating for prolonged inactivity. No decay inside the
// grace period; beyond it the rating decays exponentially per month, floored
// at MinRatingAfterDecay.
func (e *Engine) applyDecay(rating float64, lastMatch time.Time) float64 {
	now := e.now()
	monthsInactive := (now.Year()-lastMatch.Year())*12 + int(now.Month()) - int(lastMatch.Month())
	if monthsInactive <= e.cfg.DecayGraceMonths {
		return rating
	}

	factor := math.Pow(1-e.cfg.MonthlyDecayRate, float64(monthsInactive-e.cfg.DecayGraceMonths))
	return math.Max(rating*factor, e.cfg.MinRatingAfterDecay)
}

// HasSurfaceRating reports whether the player has ever recorded a match on
// the given surface.
func (e *Engine) HasSurfaceRating(player string, surface models.Surface) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state, ok := e.players[models.NormalizePlayerName(player)]
	if !ok {
		return false
	}
	_, ok = state.surfaces[surface]
	return ok
}

// PredictMatch returns win probabilities for both players on the given
// surface. When exactly one player has surface-specific history, that
// player's effective rating gets half the configured surface advantage.
func (e *Engine) PredictMatch(player1, player2 string, surface models.Surface) (float64, float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	k1 := models.NormalizePlayerName(player1)
	k2 := models.NormalizePlayerName(player2)

	rating1 := e.ratingLocked(k1, surface, true)
	rating2 := e.ratingLocked(k2, surface, true)

	has1 := e.hasSurfaceLocked(k1, surface)
	has2 := e.hasSurfaceLocked(k2, surface)
	if has1 && !has2 {
		rating1 += e.cfg.SurfaceAdvantage * 0.5
	} else if has2 && !has1 {
		rating2 += e.cfg.SurfaceAdvantage * 0.5
	}

	prob1 := expectedScore(rating1, rating2)
	return prob1, 1 - prob1
}

func (e *Engine) hasSurfaceLocked(key string, surface models.Surface) bool {
	state, ok := e.players[key]
	if !ok {
		return false
	}
	_, ok = state.surfaces[surface]
	return ok
}

// expectedScore is the logistic Elo formula for player A against player B
func expectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// Apply updates both players' ratings for a completed match and returns the
// new surface-specific ratings (winner first). Matches must be applied in
// non-decreasing date order; the engine does not reorder.
func (e *Engine) Apply(winner, loser, winnerScore, loserScore string, surface models.Surface, matchDate time.Time) (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	winnerKey := models.NormalizePlayerName(winner)
	loserKey := models.NormalizePlayerName(loser)

	winnerState, winnerNew := e.players[winnerKey], false
	loserState, loserNew := e.players[loserKey], false
	if winnerState == nil {
		winnerNew = true
	}
	if loserState == nil {
		loserNew = true
	}

	// Seed new players from their opponent's pre-match strength. When both
	// are new there is no mutual information, so both start at the default.
	if winnerNew {
		opponent := e.cfg.DefaultRating
		if !loserNew {
			opponent = e.ratingLocked(loserKey, surface, false)
		}
		winnerState = e.seedPlayer(winnerKey, opponent, winnerNew && loserNew)
	}
	if loserNew {
		opponent := e.cfg.DefaultRating
		if !winnerNew {
			opponent = e.ratingLocked(winnerKey, surface, false)
		}
		loserState = e.seedPlayer(loserKey, opponent, winnerNew && loserNew)
	}

	winnerState.lastMatch = &matchDate
	loserState.lastMatch = &matchDate

	multiplier := setsMultiplier(winnerScore)

	// Expected scores use the stored pre-update ratings (surface entry when
	// present, else overall); ratings on disk always represent the value
	// as-of-last-match, so no decay enters the update itself.
	winnerRating := surfaceOrOverall(winnerState, surface)
	loserRating := surfaceOrOverall(loserState, surface)

	expectedWinner := expectedScore(winnerRating, loserRating)
	expectedLoser := 1 - expectedWinner

	k := e.cfg.KFactor * multiplier
	deltaWinner := k * (1.0 - expectedWinner)
	deltaLoser := k * (0.0 - expectedLoser)

	newWinnerSurface := e.applyDelta(winnerState, surface, deltaWinner)
	newLoserSurface := e.applyDelta(loserState, surface, deltaLoser)

	if matchDate.After(e.lastProcessed) {
		e.lastProcessed = matchDate
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"winner":     winnerKey,
			"loser":      loserKey,
			"surface":    surface,
			"multiplier": multiplier,
			"delta":      deltaWinner,
		}).Debug("Ratings updated")
	}

	return newWinnerSurface, newLoserSurface
}

// seedPlayer creates state for a first-time player. The starting tier is
// estimated from the first opponent's strength: debuting against strong
// competition implies the newcomer belongs in roughly the same tier.
func (e *Engine) seedPlayer(key string, opponentRating float64, bothNew bool) *playerState {
	initial := e.cfg.DefaultRating
	if !bothNew {
		switch {
		case opponentRating >= 2200:
			initial = 1900
		case opponentRating >= 1900:
			initial = 1700
		case opponentRating >= 1700:
			initial = 1600
		case opponentRating >= 1600:
			initial = 1550
		}
	}

	state := &playerState{
		overall:  initial,
		surfaces: make(map[models.Surface]float64),
	}
	e.players[key] = state
	return state
}

// surfaceOrOverall resolves the stored pre-update rating for the match surface
func surfaceOrOverall(state *playerState, surface models.Surface) float64 {
	if r, ok := state.surfaces[surface]; ok {
		return r
	}
	return state.overall
}

// applyDelta applies the rating change to both the overall and the
// surface-specific rating, initializing the surface rating from the current
// overall on the player's first appearance on that surface. Overall and
// surface ratings diverge as surface history accumulates.
func (e *Engine) applyDelta(state *playerState, surface models.Surface, delta float64) float64 {
	if _, ok := state.surfaces[surface]; !ok {
		state.surfaces[surface] = state.overall
	}
	state.overall += delta
	state.surfaces[surface] += delta
	return state.surfaces[surface]
}

// AllRatings returns every known player's decayed rating, surface-specific
// when surface is non-empty.
func (e *Engine) AllRatings(surface models.Surface) map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]float64, len(e.players))
	for key := range e.players {
		out[key] = e.ratingLocked(key, surface, true)
	}
	return out
}

// PlayerCount returns the number of rated players
func (e *Engine) PlayerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.players)
}

// LastProcessed returns the date of the most recent applied match
func (e *Engine) LastProcessed() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastProcessed
}

// Snapshot exports a deep copy of the engine state for persistence or
// read-only consumers.
func (e *Engine) Snapshot() *models.RatingsSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := models.NewRatingsSnapshot()
	for key, state := range e.players {
		pr := models.PlayerRating{Player: key, Overall: state.overall}
		if len(state.surfaces) > 0 {
			pr.SurfaceRatings = make(map[models.Surface]float64, len(state.surfaces))
			for s, r := range state.surfaces {
				pr.SurfaceRatings[s] = r
			}
		}
		if state.lastMatch != nil {
			d := *state.lastMatch
			pr.LastMatchDate = &d
		}
		snapshot.Players[key] = pr
	}
	snapshot.Meta = models.SnapshotMeta{
		LastUpdate:   e.lastProcessed,
		TotalPlayers: len(e.players),
	}
	return snapshot
}

// Save persists the current state through the repository
func (e *Engine) Save(ctx context.Context) error {
	return e.repo.Save(ctx, e.Snapshot())
}

// Reload replaces in-memory state with the repository's current contents
func (e *Engine) Reload(ctx context.Context) error {
	snapshot, err := e.repo.Load(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.players = make(map[string]*playerState)
	e.restoreLocked(snapshot)
	return nil
}

func (e *Engine) restore(snapshot *models.RatingsSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restoreLocked(snapshot)
}

func (e *Engine) restoreLocked(snapshot *models.RatingsSnapshot) {
	for key, pr := range snapshot.Players {
		state := &playerState{
			overall:  pr.Overall,
			surfaces: make(map[models.Surface]float64, len(pr.SurfaceRatings)),
		}
		for s, r := range pr.SurfaceRatings {
			state.surfaces[s] = r
		}
		if pr.LastMatchDate != nil {
			d := *pr.LastMatchDate
			state.lastMatch = &d
		}
		e.players[key] = state
	}
	e.lastProcessed = snapshot.Meta.LastUpdate
}

// SurfaceAdvantage exposes the configured specialization bonus for reporting
func (e *Engine) SurfaceAdvantage() float64 {
	return e.cfg.SurfaceAdvantage
}

// SetClock overrides the engine's time source. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}
