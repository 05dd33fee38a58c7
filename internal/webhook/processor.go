package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VladKvetkin/paywebhook/internal/entitlement"
	"github.com/VladKvetkin/paywebhook/internal/metrics"
	"github.com/VladKvetkin/paywebhook/internal/models"
	"github.com/VladKvetkin/paywebhook/internal/services/signature"
	"github.com/VladKvetkin/paywebhook/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	OutcomeHealthCheck       = "health_check"
	OutcomeMalformed         = "malformed"
	OutcomeSignatureRejected = "signature_rejected"
	OutcomePaymentFailed     = "payment_failed"
	OutcomeOrderNotFound     = "order_not_found"
	OutcomeAlreadyProcessed  = "already_processed"
	OutcomeActivated         = "activated"
	OutcomeError             = "error"
)

const (
	messageActive  = "Webhook is active"
	messageHandled = "Error handled"
)

type SignatureMode string

const (
	// SignatureEnforce skips the payment branch unless the signature matches.
	SignatureEnforce SignatureMode = "enforce"
	// SignatureReport only logs missing or mismatched signatures.
	SignatureReport SignatureMode = "report"
)

type Processor struct {
	storage     storage.Storage
	activator   *entitlement.Activator
	checksumKey string
	mode        SignatureMode
	metrics     *metrics.Metrics
	now         func() time.Time
}

type Option func(*Processor)

func WithSignatureMode(mode SignatureMode) Option {
	return func(p *Processor) {
		p.mode = mode
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

func NewProcessor(storage storage.Storage, activator *entitlement.Activator, checksumKey string, opts ...Option) *Processor {
	p := &Processor{
		storage:     storage,
		activator:   activator,
		checksumKey: checksumKey,
		mode:        SignatureEnforce,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process runs one gateway callback to completion. The returned acknowledgment
// is always successful; failures are only visible in logs and metrics.
func (p *Processor) Process(ctx context.Context, callback Callback) (ack models.WebhookAck) {
	start := time.Now()
	outcome := OutcomeError
	logger := zap.L().With(zap.String("delivery_id", uuid.NewString()), zap.String("method", callback.Method))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("webhook panic", zap.Any("panic", r), zap.Stack("stack"))

			outcome = OutcomeError
			ack = models.WebhookAck{Success: true, Message: messageHandled}
		}

		p.metrics.Observe(outcome, time.Since(start).Seconds())
		logger.Info("webhook handled", zap.String("outcome", outcome), zap.Duration("duration", time.Since(start)))
	}()

	// The gateway hanging up must not abort a half-applied payment.
	ctx = context.WithoutCancel(ctx)

	classification := Classify(callback)

	switch classification.Kind {
	case HealthCheck:
		outcome = OutcomeHealthCheck
		if classification.Probe {
			return models.WebhookAck{Success: true, Message: messageActive}
		}

		return models.WebhookAck{Success: true}
	case Malformed:
		outcome = OutcomeMalformed
		logger.Warn("malformed webhook request", zap.Error(classification.Err))

		return models.WebhookAck{Success: true}
	}

	event := classification.Event
	logger = logger.With(zap.String("order_code", string(event.Data.OrderCode)), zap.String("payment_code", event.Data.Code))

	var err error
	outcome, err = p.handlePayment(ctx, logger, event)
	if err != nil {
		logger.Error("error processing webhook", zap.Error(err))

		return models.WebhookAck{Success: true, Message: messageHandled}
	}

	return models.WebhookAck{Success: true}
}

func (p *Processor) handlePayment(ctx context.Context, logger *zap.Logger, event Event) (string, error) {
	if !p.verified(logger, event) {
		return OutcomeSignatureRejected, nil
	}

	if !event.Paid() {
		logger.Info("payment not successful", zap.String("desc", event.Desc), zap.String("payment_desc", event.Data.Desc))
		return OutcomePaymentFailed, nil
	}

	orderCode := string(event.Data.OrderCode)

	order, err := p.storage.GetOrderByCode(ctx, orderCode)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			logger.Error("order not found")
			return OutcomeOrderNotFound, nil
		}

		return OutcomeError, fmt.Errorf("error get order: %w", err)
	}

	if order.IsPaid() {
		logger.Info("order already paid, skipping")
		return OutcomeAlreadyProcessed, nil
	}

	err = p.storage.InTx(ctx, func(tx storage.Storage) error {
		paid, err := tx.MarkOrderPaid(ctx, orderCode, event.RawData, p.now())
		if err != nil {
			return err
		}

		if _, err := p.activator.Activate(ctx, tx, paid.UserID, paid.PlanType); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyProcessed) {
			logger.Info("order paid by a concurrent callback, skipping")
			return OutcomeAlreadyProcessed, nil
		}

		return OutcomeError, fmt.Errorf("error activate order: %w", err)
	}

	logger.Info("order paid", zap.String("user_id", order.UserID), zap.String("plan", string(order.PlanType)))

	return OutcomeActivated, nil
}

func (p *Processor) verified(logger *zap.Logger, event Event) bool {
	if event.Signature == "" {
		if p.mode == SignatureEnforce {
			logger.Warn("missing signature, payment rejected")
			return false
		}

		logger.Info("missing signature, verification skipped")
		return true
	}

	result := signature.Verify(event.SignedFields, event.Signature, p.checksumKey)
	if result == signature.Match {
		return true
	}

	if p.mode == SignatureEnforce {
		logger.Warn("signature mismatch, payment rejected")
		return false
	}

	logger.Warn("signature mismatch, continuing")
	return true
}
