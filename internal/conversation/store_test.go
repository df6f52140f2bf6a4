package conversation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/set-night/chatline/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateSeedsNewTranscript(t *testing.T) {
	seed := NewSeed("")
	s := NewStore(seed)

	tests := []struct {
		name         string
		key          domain.SessionKey
		displayName  string
		wantGreeting string
	}{
		{name: "anonymous", key: "a", wantGreeting: defaultGreeting},
		{name: "named", key: "b", displayName: "Asha", wantGreeting: seed.Greeting("Asha")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := s.GetOrCreate(tt.key, tt.displayName)
			require.Equal(t, SeedLen, snap.Len())
			assert.Equal(t, domain.SpeakerUser, snap.Turns[0].Speaker)
			assert.Equal(t, DefaultInstruction, snap.Turns[0].Text)
			assert.Equal(t, domain.SpeakerModel, snap.Turns[1].Speaker)
			assert.Equal(t, tt.wantGreeting, snap.Turns[1].Text)
		})
	}
	assert.Contains(t, seed.Greeting("Asha"), "Hello Asha!")
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	s := NewStore(NewSeed("be brief"))

	first := s.GetOrCreate("k", "")
	second := s.GetOrCreate("k", "Someone Else")

	assert.Equal(t, first.Turns, second.Turns)
	assert.Equal(t, "be brief", second.Turns[0].Text)
	assert.Equal(t, 1, s.Len())
}

func TestAppend(t *testing.T) {
	s := NewStore(NewSeed(""))

	err := s.Append("missing", domain.SpeakerUser, "hi")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	s.GetOrCreate("k", "")
	require.NoError(t, s.Append("k", domain.SpeakerUser, "hi"))
	assert.ErrorIs(t, s.Append("k", domain.Speaker("system"), "x"), domain.ErrUnknownSpeaker)

	snap, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, 3, snap.Len())
	assert.Equal(t, "hi", snap.Turns[2].Text)
}

func TestCommitAccumulatesUsage(t *testing.T) {
	s := NewStore(NewSeed(""))
	s.GetOrCreate("k", "")

	for i := 0; i < 3; i++ {
		_, err := s.Commit("k", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), domain.Usage{
			PromptTokens:     10,
			CompletionTokens: 5,
			Cost:             decimal.RequireFromString("0.001"),
		})
		require.NoError(t, err)
	}

	snap, _ := s.Get("k")
	assert.Equal(t, 2+2*3, snap.Len())
	assert.Equal(t, int64(30), snap.Usage.PromptTokens)
	assert.Equal(t, int64(15), snap.Usage.CompletionTokens)
	assert.True(t, snap.Usage.Cost.Equal(decimal.RequireFromString("0.003")))

	for i, turn := range snap.Turns[SeedLen:] {
		if i%2 == 0 {
			assert.Equal(t, domain.SpeakerUser, turn.Speaker)
		} else {
			assert.Equal(t, domain.SpeakerModel, turn.Speaker)
		}
	}

	_, err := s.Commit("missing", "q", "a", domain.Usage{})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore(NewSeed(""))
	snap := s.GetOrCreate("k", "")
	snap.Turns[0].Text = "tampered"

	again, _ := s.Get("k")
	assert.Equal(t, DefaultInstruction, again.Turns[0].Text)
}

func TestMaxTurnsKeepsSeedAndNewestPairs(t *testing.T) {
	s := NewStore(NewSeed(""), WithMaxTurns(6))
	s.GetOrCreate("k", "")

	for i := 0; i < 5; i++ {
		_, err := s.Commit("k", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), domain.Usage{})
		require.NoError(t, err)
	}

	snap, _ := s.Get("k")
	require.Equal(t, 6, snap.Len())
	assert.Equal(t, DefaultInstruction, snap.Turns[0].Text)
	assert.Equal(t, defaultGreeting, snap.Turns[1].Text)
	assert.Equal(t, "q3", snap.Turns[2].Text)
	assert.Equal(t, "a3", snap.Turns[3].Text)
	assert.Equal(t, "q4", snap.Turns[4].Text)
	assert.Equal(t, "a4", snap.Turns[5].Text)
}

func TestMaxTurnsFloor(t *testing.T) {
	s := NewStore(NewSeed(""), WithMaxTurns(1))
	s.GetOrCreate("k", "")
	for i := 0; i < 3; i++ {
		_, err := s.Commit("k", "q", "a", domain.Usage{})
		require.NoError(t, err)
	}
	snap, _ := s.Get("k")
	assert.Equal(t, SeedLen+2, snap.Len())
}

func TestConcurrentGetOrCreateSeedsOnce(t *testing.T) {
	s := NewStore(NewSeed(""))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.GetOrCreate("shared", "")
			_, err := s.Commit("shared", "q", "a", domain.Usage{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, _ := s.Get("shared")
	require.Equal(t, SeedLen+2*50, snap.Len())
	assert.Equal(t, DefaultInstruction, snap.Turns[0].Text)
	for i, turn := range snap.Turns[SeedLen:] {
		assert.NotEqual(t, DefaultInstruction, turn.Text)
		if i%2 == 0 {
			assert.Equal(t, "q", turn.Text)
		} else {
			assert.Equal(t, "a", turn.Text)
		}
	}
}

func TestClaimSeed(t *testing.T) {
	s := NewStore(NewSeed(""), WithMaxTurns(4))

	_, ok := s.ClaimSeed("missing")
	assert.False(t, ok)

	s.GetOrCreate("k", "Asha")
	for i := 0; i < 3; i++ {
		_, err := s.Commit("k", "q", "a", domain.Usage{})
		require.NoError(t, err)
	}

	seed, ok := s.ClaimSeed("k")
	require.True(t, ok)
	require.Len(t, seed, SeedLen)
	assert.Equal(t, DefaultInstruction, seed[0].Text)
	assert.Contains(t, seed[1].Text, "Hello Asha!")

	_, ok = s.ClaimSeed("k")
	assert.False(t, ok)
}
