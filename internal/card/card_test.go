package card

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogShape(t *testing.T) {
	require.Len(t, Effects(), 28)
	require.Len(t, Catalog(), 28)

	seen := make(map[EffectID]bool)
	for _, c := range Catalog() {
		require.NoError(t, ValidateManualCode(c.Code), c.Code)

		def, ok := Effect(c.Effect)
		require.True(t, ok, "card %s points at unknown effect %s", c.Code, c.Effect)
		assert.Equal(t, def.Title, c.Title)
		assert.NotEmpty(t, c.Phases)
		assert.Positive(t, c.Weight)

		seen[c.Effect] = true
	}
	assert.Len(t, seen, 28)
}

func TestEffectTimings(t *testing.T) {
	count := make(map[Timing]int)
	for _, e := range Effects() {
		count[e.Timing]++
	}

	assert.Equal(t, 9, count[TimingImmediate])
	assert.Equal(t, 7, count[TimingToday])
	assert.Equal(t, 7, count[TimingNextNight])
	assert.Equal(t, 5, count[TimingPersistentShort])
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"KART-0001", "KART-0001", true},
		{"  kart-0012 ", "KART-0012", true},
		{"https://example.com/c/KART-0028?x=1", "KART-0028", true},
		{"KART-12", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseCode(tt.token)
		assert.Equal(t, tt.ok, ok, tt.token)
		assert.Equal(t, tt.want, got, tt.token)
	}
}

func TestValidateManualCode(t *testing.T) {
	assert.NoError(t, ValidateManualCode("KART-0003"))
	assert.NoError(t, ValidateManualCode("ab-1234"))
	assert.ErrorIs(t, ValidateManualCode("K-0003"), ErrInvalidCode)
	assert.ErrorIs(t, ValidateManualCode("KART-00031"), ErrInvalidCode)
	assert.ErrorIs(t, ValidateManualCode("see KART-0003"), ErrInvalidCode)
}

func TestResolve(t *testing.T) {
	c, def, err := Resolve("KART-0011", "CARD_DRAWING", nil)
	require.NoError(t, err)
	assert.Equal(t, DoubleVote, c.Effect)
	assert.Equal(t, TimingToday, def.Timing)

	_, _, err = Resolve("KART-9999", "CARD_DRAWING", nil)
	assert.ErrorIs(t, err, ErrUnknownCard)

	_, _, err = Resolve("garbage", "CARD_DRAWING", nil)
	assert.ErrorIs(t, err, ErrUnknownCard)

	_, _, err = Resolve("KART-0011", "NIGHT", nil)
	assert.ErrorIs(t, err, ErrWrongPhase)

	// day-legal card
	_, _, err = Resolve("KART-0008", "DAY_DISCUSSION", nil)
	assert.NoError(t, err)

	_, _, err = Resolve("KART-0002", "CARD_DRAWING", map[string]bool{"KART-0002": true})
	assert.ErrorIs(t, err, ErrCardExhausted)

	// repeatable cards ignore the used set
	_, _, err = Resolve("KART-0001", "CARD_DRAWING", map[string]bool{"KART-0001": true})
	assert.NoError(t, err)
}

func TestDraw(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for range 200 {
		c, err := Draw(rng, "CARD_DRAWING", nil)
		require.NoError(t, err)
		assert.True(t, c.AllowedIn("CARD_DRAWING"))
	}

	used := make(map[string]bool)
	for _, c := range Catalog() {
		if c.OncePerGame {
			used[c.Code] = true
		}
	}
	for range 200 {
		c, err := Draw(rng, "CARD_DRAWING", used)
		require.NoError(t, err)
		assert.False(t, c.OncePerGame)
	}

	_, err := Draw(rng, "NIGHT", nil)
	assert.ErrorIs(t, err, ErrNoPlayableCard)
}
