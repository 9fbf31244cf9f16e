package notifications

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"podboost/internal/config"
	"podboost/internal/services"
)

// Event identifies a monitor milestone worth reporting to the chat.
type Event string

const (
	// EventGoalChanged reports a donation total change without a reschedule.
	EventGoalChanged Event = "goal-changed"
	// EventRescheduled reports a new publish time for an episode.
	EventRescheduled Event = "rescheduled"
	// EventGoalReached reports an immediate publish after the goal was hit.
	EventGoalReached Event = "goal-reached"
	// EventMonitorDegraded reports the browser fetch being disabled.
	EventMonitorDegraded Event = "monitor-degraded"
	// EventCheckFailed reports a failed reschedule or publish attempt.
	EventCheckFailed Event = "check-failed"
)

// Payload carries the values rendered into a chat message.
type Payload struct {
	// Episode is the title of the episode the event concerns.
	Episode string
	// Action describes what happened to the episode, for example
	// "Published" or "Rescheduled to 2026-03-10 21:20:00 CET".
	Action string
	// Message carries free-form detail for operational events.
	Message string
	// Amount is the donation total in satoshis behind the event.
	Amount int64
}

// Service defines the notification surface exposed to the monitor.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
	TestNotification(ctx context.Context) error
}

// Option adjusts Telegram service construction.
type Option func(*telegramService)

// WithAPIEndpoint overrides the Bot API endpoint format. The format must
// contain two %s verbs, one for the bot token and one for the method name.
func WithAPIEndpoint(endpoint string) Option {
	return func(s *telegramService) {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// NewService builds a notification service backed by Telegram when
// configured. When notifications are disabled or no bot token is set, a
// noop implementation is returned.
func NewService(cfg *config.Config, opts ...Option) Service {
	if cfg == nil || !cfg.Telegram.Enabled {
		return noopService{}
	}
	token := strings.TrimSpace(cfg.Telegram.BotToken)
	if token == "" {
		return noopService{}
	}

	svc := &telegramService{
		token:     token,
		endpoint:  tgbotapi.APIEndpoint,
		chatID:    cfg.Telegram.ChatID,
		topicID:   cfg.Telegram.TopicID,
		silent:    cfg.Telegram.Silent,
		threshold: cfg.Monitor.NotificationThreshold,
		timeout:   cfg.TelegramTimeout(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type telegramService struct {
	token     string
	endpoint  string
	chatID    int64
	topicID   int
	silent    bool
	threshold int64
	timeout   time.Duration

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func (s *telegramService) Publish(ctx context.Context, event Event, payload Payload) error {
	if s.suppressed(event, payload) {
		return nil
	}
	text, err := renderMessage(event, payload)
	if err != nil {
		return err
	}
	return s.send(ctx, text)
}

func (s *telegramService) TestNotification(ctx context.Context) error {
	return s.send(ctx, "<b>Release-Boosting Test:</b>\nNotifications are configured correctly.\n")
}

// suppressed reports whether the event falls under the notification
// threshold. Only donation-change events are gated; goal completion and
// operational alerts always go out.
func (s *telegramService) suppressed(event Event, payload Payload) bool {
	switch event {
	case EventGoalChanged, EventRescheduled:
		return payload.Amount < s.threshold
	default:
		return false
	}
}

func renderMessage(event Event, payload Payload) (string, error) {
	switch event {
	case EventGoalChanged, EventRescheduled, EventGoalReached:
		episode := strings.TrimSpace(payload.Episode)
		action := strings.TrimSpace(payload.Action)
		if episode == "" || action == "" {
			return "", services.Wrap(services.ErrValidation, "notifications", "render",
				fmt.Sprintf("event %s requires an episode title and an action", event), nil)
		}
		return fmt.Sprintf("<b>Release-Boosting Update:</b>\nEpisode: %s\nAction: %s\n",
			html.EscapeString(episode), html.EscapeString(action)), nil
	case EventMonitorDegraded, EventCheckFailed:
		detail := strings.TrimSpace(payload.Message)
		if detail == "" {
			return "", services.Wrap(services.ErrValidation, "notifications", "render",
				fmt.Sprintf("event %s requires a message", event), nil)
		}
		return fmt.Sprintf("<b>Release-Boosting Alert:</b>\n%s\n", html.EscapeString(detail)), nil
	default:
		return "", services.Wrap(services.ErrValidation, "notifications", "render",
			fmt.Sprintf("unknown event %q", event), nil)
	}
}

func (s *telegramService) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bot, err := s.api()
	if err != nil {
		return err
	}

	params := tgbotapi.Params{"text": text}
	params.AddNonZero64("chat_id", s.chatID)
	params.AddNonEmpty("parse_mode", tgbotapi.ModeHTML)
	params.AddBool("disable_notification", s.silent)
	params.AddNonZero("message_thread_id", s.topicID)

	if _, err := bot.MakeRequest("sendMessage", params); err != nil {
		return services.Wrap(services.ErrTransient, "notifications", "send", "deliver Telegram message", err)
	}
	return nil
}

// api connects to the Bot API on first use so that daemon startup does not
// depend on Telegram being reachable.
func (s *telegramService) api() (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot != nil {
		return s.bot, nil
	}

	client := &http.Client{Timeout: s.timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(s.token, s.endpoint, client)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "notifications", "connect",
			"authenticate Telegram bot, check telegram.bot_token", err)
	}
	s.bot = bot
	return s.bot, nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
func (noopService) TestNotification(context.Context) error        { return nil }
