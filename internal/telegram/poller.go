package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/connect-bot/internal/bot"
)

// Submitter принимает события в обработку.
type Submitter interface {
	Submit(ev bot.Event) bool
}

// Poller получает обновления long polling'ом и передаёт их диспетчеру.
type Poller struct {
	api     *tgbotapi.BotAPI
	timeout int
	sink    Submitter
	log     *slog.Logger
}

// NewPoller создаёт Poller. timeout — длительность long polling'а в секундах.
func (c *Client) NewPoller(timeout int, sink Submitter, log *slog.Logger) *Poller {
	return &Poller{api: c.api, timeout: timeout, sink: sink, log: log}
}

// Run работает до отмены ctx. Накопившиеся за время простоя обновления отбрасываются.
func (p *Poller) Run(ctx context.Context) error {
	const op = "telegram.Poller.Run"

	if _, err := p.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := p.api.GetUpdatesChan(cfg)
	defer p.api.StopReceivingUpdates()

	p.log.Info("polling started")
	for {
		select {
		case <-ctx.Done():
			p.log.Info("polling stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := ToEvent(upd)
			if !ok {
				continue
			}
			p.sink.Submit(ev)
		}
	}
}
