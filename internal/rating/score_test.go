package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetsMultiplier(t *testing.T) {
	tests := []struct {
		name  string
		score string
		want  float64
	}{
		{name: "straight sets best of three", score: "6-4 6-3", want: 1.2},
		{name: "straight sets best of five", score: "6-4 6-3 7-5", want: 1.3},
		{name: "three setter", score: "6-4 3-6 7-5", want: 1.2},
		{name: "five setter", score: "6-4 3-6 6-4 3-6 6-4", want: 1.3},
		{name: "empty score", score: "", want: 1.0},
		{name: "whitespace only", score: "   ", want: 1.0},
		{name: "retirement", score: "RET", want: 1.0},
		{name: "walkover", score: "W/O", want: 1.0},
		{name: "garbage", score: "not a score", want: 1.0},
		{name: "single set", score: "6-4", want: 1.0},
		{name: "tiebreak notation drops the set", score: "7-6(5) 6-4", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, setsMultiplier(tt.score))
		})
	}
}
