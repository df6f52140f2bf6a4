package telegram

import (
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/set-night/chatline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	parts := SplitMessage(strings.Repeat("a", 25), 10)
	assert.Equal(t, []string{strings.Repeat("a", 10), strings.Repeat("a", 10), strings.Repeat("a", 5)}, parts)

	parts = SplitMessage("aaaaaaa\nbbbbbbbbb", 10)
	assert.Equal(t, []string{"aaaaaaa\n", "bbbbbbbbb"}, parts)

	// runes, not bytes
	parts = SplitMessage(strings.Repeat("я", 12), 10)
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("я", 10), parts[0])
}

func TestFixMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "balanced", in: "use `x` here", want: "use `x` here"},
		{name: "open inline", in: "use `x here", want: "use `x here`"},
		{name: "open fence", in: "```go\nfmt.Println()", want: "```go\nfmt.Println()\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FixMarkdown(tt.in))
		})
	}
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, domain.SessionKey("tg-42"), SessionKey(42))
	assert.Equal(t, domain.SessionKey("tg--100123"), SessionKey(-100123))
}

func TestParseUpdate(t *testing.T) {
	msg := func(text string, from *models.User) *models.Update {
		return &models.Update{Message: &models.Message{
			Chat: models.Chat{ID: 7},
			Text: text,
			From: from,
		}}
	}

	in, ok := parseUpdate(msg("  hello  ", &models.User{FirstName: "Kiran"}))
	require.True(t, ok)
	assert.Equal(t, int64(7), in.chatID)
	assert.Equal(t, "hello", in.text)
	assert.Equal(t, "Kiran", in.displayName)

	in, ok = parseUpdate(msg("hello", nil))
	require.True(t, ok)
	assert.Empty(t, in.displayName)

	for _, u := range []*models.Update{nil, {}, msg("", nil), msg("/start", nil), msg("   ", nil)} {
		_, ok := parseUpdate(u)
		assert.False(t, ok)
	}
}
