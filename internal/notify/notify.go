package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldroute/backend/internal/models"
)

type Store interface {
	InsertNotification(ctx context.Context, n models.Notification) error
}

type TokenLookup interface {
	FindDealer(ctx context.Context, id int64) (*models.Dealer, error)
}

// PushSender delivers a push message to a device token.
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}

// Service persists notifications and forwards them to the push channel.
// Every failure is logged and swallowed: notification delivery must never
// affect the business operation that triggered it, which is why Notify
// returns nothing.
type Service struct {
	Store   Store
	Dealers TokenLookup
	Push    PushSender
	Logger  zerolog.Logger

	Now func() time.Time
}

func NewService(store Store, dealers TokenLookup, push PushSender, logger zerolog.Logger) *Service {
	if push == nil {
		push = NopPush{}
	}
	return &Service{Store: store, Dealers: dealers, Push: push, Logger: logger, Now: time.Now}
}

func (s *Service) Notify(ctx context.Context, userID int64, notifType, title, message string, referenceID *int64) {
	n := models.Notification{
		UserID:      userID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		ReferenceID: referenceID,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.Store.InsertNotification(ctx, n); err != nil {
		s.Logger.Error().Err(err).Int64("user_id", userID).Str("type", notifType).Msg("could not persist notification")
		return
	}

	dealer, err := s.Dealers.FindDealer(ctx, userID)
	if err != nil {
		s.Logger.Error().Err(err).Int64("user_id", userID).Msg("could not resolve push token")
		return
	}
	if dealer == nil || dealer.PushToken == "" {
		s.Logger.Debug().Int64("user_id", userID).Msg("user has no push token registered")
		return
	}

	data := map[string]string{"type": notifType}
	if referenceID != nil {
		data["reference_id"] = strconv.FormatInt(*referenceID, 10)
	}
	if err := s.Push.SendPush(ctx, dealer.PushToken, title, message, data); err != nil {
		s.Logger.Error().Err(err).Int64("user_id", userID).Msg("push delivery failed")
	}
}

// NopPush discards push messages; used when no push backend is configured.
type NopPush struct{}

func (NopPush) SendPush(context.Context, string, string, string, map[string]string) error {
	return nil
}
