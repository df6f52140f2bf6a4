// Package telegram exposes the chat service to Telegram users. Each chat is
// its own session.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/chatline/internal/config"
	"github.com/set-night/chatline/internal/domain"
	"github.com/set-night/chatline/internal/service"
)

type Frontend struct {
	bot  *bot.Bot
	chat *service.ChatService
}

func NewFrontend(token string, chat *service.ChatService, opts ...bot.Option) (*Frontend, error) {
	f := &Frontend{chat: chat}

	opts = append([]bot.Option{
		bot.WithMiddlewares(recoverMiddleware(), loggingMiddleware()),
		bot.WithDefaultHandler(f.handleText),
	}, opts...)

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, f.handleStart)
	f.bot = b
	return f, nil
}

// Start blocks polling for updates until ctx is done.
func (f *Frontend) Start(ctx context.Context) {
	slog.Info("starting telegram frontend")
	f.bot.Start(ctx)
	slog.Info("telegram frontend stopped")
}

// SessionKey maps a Telegram chat onto a conversation.
func SessionKey(chatID int64) domain.SessionKey {
	return domain.SessionKey(fmt.Sprintf("tg-%d", chatID))
}

type incoming struct {
	chatID      int64
	text        string
	displayName string
}

func parseUpdate(update *models.Update) (incoming, bool) {
	if update == nil || update.Message == nil {
		return incoming{}, false
	}
	msg := update.Message
	text := strings.TrimSpace(msg.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return incoming{}, false
	}
	in := incoming{chatID: msg.Chat.ID, text: text}
	if msg.From != nil {
		in.displayName = msg.From.FirstName
	}
	return in, true
}

func (f *Frontend) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   config.WelcomeText,
	})
}

func (f *Frontend) handleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	in, ok := parseUpdate(update)
	if !ok {
		return
	}

	stopTyping := StartTyping(ctx, b, in.chatID)
	reply, err := f.chat.Submit(ctx, service.SubmitRequest{
		Key:         SessionKey(in.chatID),
		Text:        in.text,
		DisplayName: in.displayName,
	})
	stopTyping()
	if err != nil {
		if !errors.Is(err, domain.ErrEmptyInput) {
			slog.Error("telegram submit", "error", err, "chat_id", in.chatID)
		}
		return
	}

	if err := SendLongMessage(ctx, b, in.chatID, reply.Text); err != nil {
		slog.Error("send reply", "error", err, "chat_id", in.chatID)
	}
}

func recoverMiddleware() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic recovered in telegram handler",
						"panic", r,
						"stack", string(debug.Stack()),
					)
				}
			}()
			next(ctx, b, update)
		}
	}
}

func loggingMiddleware() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			next(ctx, b, update)

			var chatID int64
			if update.Message != nil {
				chatID = update.Message.Chat.ID
			}
			slog.Debug("update processed",
				"update_id", update.ID,
				"chat_id", chatID,
				"duration", time.Since(start),
			)
		}
	}
}
