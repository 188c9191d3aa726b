package move

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsduel/internal/randutil"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		player, opponent Move
		want             Outcome
	}{
		{Rock, Rock, Draw},
		{Rock, Paper, Lose},
		{Rock, Scissors, Win},
		{Paper, Rock, Win},
		{Paper, Paper, Draw},
		{Paper, Scissors, Lose},
		{Scissors, Rock, Lose},
		{Scissors, Paper, Win},
		{Scissors, Scissors, Draw},
	}

	for _, tt := range tests {
		t.Run(tt.player.String()+"_vs_"+tt.opponent.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.player, tt.opponent))
		})
	}
}

func TestBeatsFormsSingleCycle(t *testing.T) {
	for _, a := range All {
		target := a.Beats()
		require.True(t, target.Valid(), "%s must beat a playable move", a)
		assert.NotEqual(t, a, target, "%s must not beat itself", a)
		assert.NotEqual(t, a, target.Beats(), "%s and %s beat each other", a, target)

		count := 0
		for _, b := range All {
			if a.Beats() == b {
				count++
			}
		}
		assert.Equal(t, 1, count, "%s must beat exactly one move", a)
	}

	// Following the relation three times returns to the start.
	assert.Equal(t, Rock, Rock.Beats().Beats().Beats())
}

func TestParseMove(t *testing.T) {
	for _, input := range []string{"rock", "Rock", " ROCK ", "r"} {
		m, err := ParseMove(input)
		require.NoError(t, err)
		assert.Equal(t, Rock, m)
	}

	m, err := ParseMove("s")
	require.NoError(t, err)
	assert.Equal(t, Scissors, m)

	_, err = ParseMove("lizard")
	assert.ErrorIs(t, err, ErrUnknownMove)
}

func TestMoveJSON(t *testing.T) {
	type payload struct {
		Move    Move    `json:"move,omitempty"`
		Outcome Outcome `json:"outcome,omitempty"`
	}

	b, err := json.Marshal(payload{Move: Paper, Outcome: Win})
	require.NoError(t, err)
	assert.JSONEq(t, `{"move":"paper","outcome":"win"}`, string(b))

	b, err = json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"move":"scissors","outcome":"draw"}`), &decoded))
	assert.Equal(t, Scissors, decoded.Move)
	assert.Equal(t, Draw, decoded.Outcome)

	assert.Error(t, json.Unmarshal([]byte(`{"move":"spock"}`), &decoded))
}

func TestRandomCoversAllMoves(t *testing.T) {
	rng := randutil.New(42)
	seen := map[Move]int{}
	for range 300 {
		m := Random(rng)
		require.True(t, m.Valid())
		seen[m]++
	}
	assert.Len(t, seen, 3)
	for _, m := range All {
		assert.Greater(t, seen[m], 50, "%s drawn too rarely", m)
	}
}

func TestRandomIsDeterministicForSeed(t *testing.T) {
	a, b := randutil.New(7), randutil.New(7)
	for range 20 {
		assert.Equal(t, Random(a), Random(b))
	}
}

func TestLocale(t *testing.T) {
	assert.Equal(t, TraditionalChinese, MatchLocale(""))
	assert.Equal(t, TraditionalChinese, MatchLocale("zh-TW"))
	assert.Equal(t, English, MatchLocale("en"))
	assert.Equal(t, English, MatchLocale("en-GB"))
	assert.Equal(t, DefaultLocale, MatchLocale("not a tag!!"))

	assert.Equal(t, "石頭", Rock.Label(TraditionalChinese))
	assert.Equal(t, "Scissors", Scissors.Label(English))
	assert.Equal(t, "布", Paper.Label(Locale("xx")))

	assert.Equal(t, "平手！🤝", Draw.Banner(TraditionalChinese))
	assert.Equal(t, "You win! 🎉", Win.Banner(English))
}
