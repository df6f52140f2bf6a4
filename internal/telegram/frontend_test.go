package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/chatline/internal/config"
	"github.com/set-night/chatline/internal/conversation"
	"github.com/set-night/chatline/internal/domain"
	"github.com/set-night/chatline/internal/format"
	"github.com/set-night/chatline/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	chatID string
	text   string
}

// fakeBotAPI answers Bot API calls and records every sendMessage.
type fakeBotAPI struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		w.Write([]byte(`{"ok": false, "error_code": 400, "description": "bad form"}`))
		return
	}

	switch path.Base(r.URL.Path) {
	case "sendMessage":
		f.mu.Lock()
		f.sent = append(f.sent, sentMessage{chatID: r.FormValue("chat_id"), text: r.FormValue("text")})
		f.mu.Unlock()
		w.Write([]byte(`{"ok": true, "result": {"message_id": 1, "date": 0, "chat": {"id": 42, "type": "private"}}}`))
	default:
		w.Write([]byte(`{"ok": true, "result": true}`))
	}
}

func (f *fakeBotAPI) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type stubProvider struct {
	err error
}

func (p *stubProvider) Complete(_ context.Context, _ []domain.Turn, _ service.GenerationConfig) (*service.Completion, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &service.Completion{Text: "first\nsecond"}, nil
}

func newTestFrontend(t *testing.T, provider service.Provider) (*Frontend, *fakeBotAPI, *conversation.Store) {
	t.Helper()

	api := &fakeBotAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := conversation.NewStore(conversation.NewSeed(""))
	chat := service.NewChatService(service.ChatDeps{
		Store:      store,
		Provider:   provider,
		Normalizer: format.Spacing,
	})
	f, err := NewFrontend("123:test", chat, bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)
	return f, api, store
}

func textUpdate(chatID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			Chat: models.Chat{ID: chatID},
			From: &models.User{FirstName: "Asha"},
			Text: text,
		},
	}
}

func TestHandleTextReplies(t *testing.T) {
	f, api, store := newTestFrontend(t, &stubProvider{})

	f.handleText(context.Background(), f.bot, textUpdate(42, "hello"))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0].chatID)
	assert.Equal(t, "first\n\nsecond", msgs[0].text)

	snap, ok := store.Get(SessionKey(42))
	require.True(t, ok)
	assert.Equal(t, conversation.SeedLen+2, snap.Len())
	assert.Contains(t, snap.Turns[1].Text, "Hello Asha!")
}

func TestHandleTextProviderFailureSendsApology(t *testing.T) {
	f, api, store := newTestFrontend(t, &stubProvider{err: errors.New("upstream down")})

	f.handleText(context.Background(), f.bot, textUpdate(7, "hello"))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "7", msgs[0].chatID)
	assert.Equal(t, FixMarkdown(config.ApologyText), msgs[0].text)
	assert.NotContains(t, msgs[0].text, "upstream down")

	snap, ok := store.Get(SessionKey(7))
	require.True(t, ok)
	assert.Equal(t, conversation.SeedLen, snap.Len())
}

func TestHandleTextIgnoresEmptyUpdates(t *testing.T) {
	tests := []struct {
		name   string
		update *models.Update
	}{
		{name: "no message", update: &models.Update{ID: 1}},
		{name: "blank text", update: textUpdate(9, "   ")},
		{name: "command", update: textUpdate(9, "/help")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, api, store := newTestFrontend(t, &stubProvider{})

			f.handleText(context.Background(), f.bot, tt.update)

			assert.Empty(t, api.messages())
			assert.Equal(t, 0, store.Len())
		})
	}
}
