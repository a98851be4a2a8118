package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlayerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rafael nadal", "Rafael Nadal"},
		{"RAFAEL NADAL", "Rafael Nadal"},
		{"  rafael   nadal  ", "Rafael Nadal"},
		{"jo-wilfried tsonga", "Jo-wilfried Tsonga"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePlayerName(tt.in), "input %q", tt.in)
	}
}

func TestMatchKeyOrderIndependent(t *testing.T) {
	a := MatchKey("Ana Ash", "Bea Boone")
	b := MatchKey("Bea Boone", "Ana Ash")
	assert.Equal(t, a, b)
	assert.Equal(t, "Ana Ash|Bea Boone", a)

	// Normalization applies before keying
	assert.Equal(t, a, MatchKey("bea boone", "ANA ASH"))
}

func TestParseSurface(t *testing.T) {
	assert.Equal(t, SurfaceClay, ParseSurface("Clay"))
	assert.Equal(t, SurfaceHard, ParseSurface(" indoor hard "))
	assert.Equal(t, SurfaceGrass, ParseSurface("Grass Court"))
	assert.Equal(t, SurfaceCarpet, ParseSurface("carpet"))
	assert.Equal(t, SurfaceHard, ParseSurface(""))
	assert.Equal(t, SurfaceHard, ParseSurface("moon dust"))
}

func TestParseTour(t *testing.T) {
	assert.Equal(t, TourWTA, ParseTour("WTA"))
	assert.Equal(t, TourWTA, ParseTour(" wta "))
	assert.Equal(t, TourATP, ParseTour("atp"))
	assert.Equal(t, TourATP, ParseTour(""))
	assert.Equal(t, TourATP, ParseTour("challenger"))
}

func TestMatchOddsKey(t *testing.T) {
	m := MatchOdds{Player1: "Bea Boone", Player2: "Ana Ash"}
	assert.Equal(t, "Ana Ash|Bea Boone", m.Key())
}
