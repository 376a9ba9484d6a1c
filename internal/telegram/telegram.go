// Package telegram implements the delivery sink over the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

type Config struct {
	Token  string
	ChatID int64

	// Timeout bounds each sendMessage call. Default 10s.
	Timeout time.Duration

	// APIURL overrides the Bot API base URL. Used by tests; empty means the
	// real api.telegram.org.
	APIURL string
}

// Client sends one message per call to a single chat. It holds no state
// beyond the bot handle; the bot is created offline so construction never
// touches the network.
type Client struct {
	bot  *tele.Bot
	chat tele.ChatID
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     cfg.APIURL,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Client{bot: b, chat: tele.ChatID(cfg.ChatID)}, nil
}

// Send posts one HTML-formatted message. A non-2xx API response or a network
// error (including the client timeout) surfaces as the returned error.
func (c *Client) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Send(c.chat, text, &tele.SendOptions{ParseMode: tele.ModeHTML})
	return err
}
