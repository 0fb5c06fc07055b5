package http

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planwerk/cockpit-backend/internal/plans/events"
	"github.com/planwerk/cockpit-backend/internal/plans/service"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
)

const (
	defaultMaxUploadBytes = 100 << 20
	defaultKeepAlive      = 15 * time.Second
)

// Subscriber opens a live feed of a plan's version events.
type Subscriber interface {
	SubscribePlan(ctx context.Context, planID uuid.UUID) (*events.Subscription, error)
}

// Handler serves the plan endpoints of the cockpit and the public scan API.
type Handler struct {
	registry *service.Registry
	ledger   *service.Ledger
	verifier *service.Verifier
	qr       *service.QRRenderer
	sub      Subscriber
	log      *logger.Logger

	maxUploadBytes int64
	keepAlive      time.Duration
}

type Options struct {
	// Subscriber is nil when Redis is not configured; the event stream then
	// answers 503.
	Subscriber     Subscriber
	MaxUploadBytes int64
	KeepAlive      time.Duration
	Log            *logger.Logger
}

func New(registry *service.Registry, ledger *service.Ledger, verifier *service.Verifier, qr *service.QRRenderer, opt Options) *Handler {
	h := &Handler{
		registry:       registry,
		ledger:         ledger,
		verifier:       verifier,
		qr:             qr,
		sub:            opt.Subscriber,
		log:            opt.Log,
		maxUploadBytes: opt.MaxUploadBytes,
		keepAlive:      opt.KeepAlive,
	}
	if h.log == nil {
		h.log = logger.NewNop()
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = defaultMaxUploadBytes
	}
	if h.keepAlive <= 0 {
		h.keepAlive = defaultKeepAlive
	}
	return h
}
