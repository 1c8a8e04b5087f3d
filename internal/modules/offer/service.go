package offer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

const (
	EventSnapshot = "snapshot"
	EventStarted  = "started"
	EventEnded    = "ended"
)

var ErrInvalidOffer = errors.New("invalid flash offer")

// Event is one message on the live feed. A nil Offer means no offer runs.
type Event struct {
	Type  string              `json:"type"`
	Offer *pricing.FlashOffer `json:"offer"`
}

type Repository interface {
	ActiveOffer(ctx context.Context, now time.Time) (*domain.FlashOffer, error)
	ListOffers(ctx context.Context) ([]domain.FlashOffer, error)
	CreateOffer(ctx context.Context, o *domain.FlashOffer) error
	EndOffer(ctx context.Context, id int64, now time.Time) error
}

type Service struct {
	repo Repository
	hub  *Hub
	now  func() time.Time
	log  *zap.Logger
}

func NewService(repo Repository, hub *Hub, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo: repo,
		hub:  hub,
		now:  func() time.Time { return time.Now().UTC() },
		log:  log,
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Active returns nil when no offer runs.
func (s *Service) Active(ctx context.Context) (*pricing.FlashOffer, error) {
	o, err := s.repo.ActiveOffer(ctx, s.now())
	if err != nil || o == nil {
		return nil, err
	}
	p := o.Pricing()
	return &p, nil
}

func (s *Service) List(ctx context.Context) ([]pricing.FlashOffer, error) {
	rows, err := s.repo.ListOffers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]pricing.FlashOffer, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Pricing())
	}
	return out, nil
}

// Create stores the offer and announces it. A zero StartsAt means now.
func (s *Service) Create(ctx context.Context, in pricing.FlashOffer) (pricing.FlashOffer, error) {
	now := s.now()
	start := in.StartsAt.UTC()
	if in.StartsAt.IsZero() {
		start = now
	}
	end := in.EndsAt.UTC()
	title := strings.TrimSpace(in.Title)
	if title == "" || !in.Rate.IsPositive() || in.Rate.GreaterThan(decimal.NewFromInt(100)) ||
		in.EndsAt.IsZero() || !end.After(start) || !end.After(now) {
		return pricing.FlashOffer{}, ErrInvalidOffer
	}

	row := &domain.FlashOffer{Title: title, Rate: in.Rate, StartsAt: start, EndsAt: end}
	if err := s.repo.CreateOffer(ctx, row); err != nil {
		return pricing.FlashOffer{}, err
	}
	out := row.Pricing()
	s.log.Info("flash offer created", zap.Int64("offer_id", row.ID), zap.String("rate", in.Rate.String()))
	s.hub.Broadcast(Event{Type: EventStarted, Offer: &out})
	return out, nil
}

// End stops an offer early and tells clients what, if anything, still runs.
func (s *Service) End(ctx context.Context, id int64) error {
	if err := s.repo.EndOffer(ctx, id, s.now()); err != nil {
		return err
	}
	s.log.Info("flash offer ended", zap.Int64("offer_id", id))

	current, err := s.Active(ctx)
	if err != nil {
		return err
	}
	s.hub.Broadcast(Event{Type: EventEnded, Offer: current})
	return nil
}
