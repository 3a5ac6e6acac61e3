package notify

import (
	"context"
	"fmt"

	"shareit/internal/events"
	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// TelegramSender is the part of the bot API the notifier needs.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewTelegramBot connects to the Bot API with token.
func NewTelegramBot(token string, debug bool) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = debug
	return bot, nil
}

// TelegramNotifier posts booking and comment events into one chat. Events are
// queued by Handle and sent by Start at no more than rps messages per second.
type TelegramNotifier struct {
	bot     TelegramSender
	chatID  int64
	limiter *rate.Limiter
	queue   chan string
	logger  *zerolog.Logger
}

func NewTelegramNotifier(bot TelegramSender, chatID int64, rps float64, logger *zerolog.Logger) *TelegramNotifier {
	if rps <= 0 {
		rps = 1
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &TelegramNotifier{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		queue:   make(chan string, 256),
		logger:  logger,
	}
}

// Subscribe registers the notifier for every event type.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(n.Handle)
}

// Handle formats the event and queues the message without blocking.
func (n *TelegramNotifier) Handle(event *events.Event) error {
	text, err := FormatEvent(event)
	if err != nil {
		return err
	}
	select {
	case n.queue <- text:
		return nil
	default:
		return fmt.Errorf("telegram queue full, dropping %s", event.Type)
	}
}

// Start sends queued messages until ctx is done.
func (n *TelegramNotifier) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-n.queue:
			if err := n.limiter.Wait(ctx); err != nil {
				return
			}
			if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
				n.logger.Error().Err(err).Int64("chat_id", n.chatID).Msg("telegram send failed")
			}
		}
	}
}

// FormatEvent renders an event as a short plain-text message.
func FormatEvent(event *events.Event) (string, error) {
	switch event.Type {
	case events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected:
		var p events.BookingEventPayload
		if err := event.Decode(&p); err != nil {
			return "", fmt.Errorf("decode %s: %w", event.Type, err)
		}
		window := fmt.Sprintf("%s - %s", p.Start.Local().Format(models.DateTimeLayout), p.End.Local().Format(models.DateTimeLayout))
		switch event.Type {
		case events.EventBookingCreated:
			return fmt.Sprintf("New booking #%d: %s wants %q (item #%d) for %s", p.BookingID, p.BookerName, p.ItemName, p.ItemID, window), nil
		case events.EventBookingApproved:
			return fmt.Sprintf("Booking #%d of %q by %s approved (%s)", p.BookingID, p.ItemName, p.BookerName, window), nil
		default:
			return fmt.Sprintf("Booking #%d of %q by %s rejected", p.BookingID, p.ItemName, p.BookerName), nil
		}
	case events.EventCommentCreated:
		var p events.CommentEventPayload
		if err := event.Decode(&p); err != nil {
			return "", fmt.Errorf("decode %s: %w", event.Type, err)
		}
		return fmt.Sprintf("%s commented on item #%d: %s", p.AuthorName, p.ItemID, p.Text), nil
	default:
		return "", fmt.Errorf("unsupported event type %s", event.Type)
	}
}
