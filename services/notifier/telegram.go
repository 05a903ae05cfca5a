package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carwatcher/config"
	"carwatcher/internal/crawler"
	"carwatcher/logger"
	cerrors "carwatcher/pkg/errors"

	"github.com/go-resty/resty/v2"
)

type telegramResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramNotifier delivers alerts through the Telegram Bot API
type TelegramNotifier struct {
	client    *resty.Client
	token     string
	chatID    string
	formatter Formatter
	log       *logger.Logger
}

// NewTelegramNotifier creates a notifier from the configuration
func NewTelegramNotifier(cfg *config.Config) *TelegramNotifier {
	client := resty.New()
	client.SetBaseURL(cfg.TelegramAPIURL)
	client.SetTimeout(10 * time.Second)

	return &TelegramNotifier{
		client:    client,
		token:     cfg.BotToken,
		chatID:    cfg.ChatID,
		formatter: NewFormatter(cfg),
		log:       logger.ForNotifier(),
	}
}

// Notify formats and sends one new-listing alert
func (n *TelegramNotifier) Notify(ctx context.Context, listing crawler.Listing, stats BatchStats) error {
	message := n.formatter.Format(listing, stats)

	res, err := n.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id": n.chatID,
			"text":    message,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", n.token))
	if err != nil {
		return cerrors.NewNotification("Telegram", "sending message", err)
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(res.Body(), &tgResp); err != nil {
		return cerrors.NewNotification("Telegram", fmt.Sprintf("unexpected response (status %d)", res.StatusCode()), err)
	}
	if !tgResp.Ok {
		reason := tgResp.Description
		if reason == "" {
			reason = fmt.Sprintf("status %d", res.StatusCode())
		}
		return cerrors.NewNotification("Telegram", "delivery rejected: "+reason, nil)
	}

	n.log.Debug().Str("listing_id", listing.ID).Msg("Notification delivered")
	return nil
}
