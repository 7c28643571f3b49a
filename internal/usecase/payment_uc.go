package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/adapter"
	"paypal-premium-service/internal/domain/ports/repository"
	"paypal-premium-service/internal/infra/logging"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase drives the synchronous direct-capture flow:
// create order -> client obtains approval -> capture -> grant on COMPLETED.
type PaymentUseCase interface {
	// CreateOrder embeds the user id as the order's correlation id so a later
	// webhook can map the payment back to the user. requestID, when the
	// client supplies one, pins the provider idempotency key across retries
	// of the same purchase attempt.
	CreateOrder(ctx context.Context, userID, amount, currency, requestID string) (model.Order, error)
	// CaptureOrder finalizes the payment. completed reports whether the
	// provider returned COMPLETED; any other status is not an error but
	// grants nothing.
	CaptureOrder(ctx context.Context, orderID, userID string) (status model.OrderStatus, completed bool, err error)
}

type paymentUC struct {
	gateway     adapter.ProviderGateway
	users       repository.UserRepository
	entitlement EntitlementUseCase
	log         *zerolog.Logger
}

func NewPaymentUseCase(gateway adapter.ProviderGateway, users repository.UserRepository, entitlement EntitlementUseCase, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{gateway: gateway, users: users, entitlement: entitlement, log: logger}
}

func (u *paymentUC) CreateOrder(ctx context.Context, userID, amount, currency, requestID string) (model.Order, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.CreateOrder")()

	if userID == "" || amount == "" {
		return model.Order{}, domain.ErrInvalidArgument
	}
	usr, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return model.Order{}, err
	}
	if usr.IsZero() {
		return model.Order{}, domain.ErrNotFound
	}

	ord, err := u.gateway.CreateOrder(ctx, amount, currency, userID, requestID)
	if err != nil {
		return model.Order{}, err
	}
	u.log.Info().Str("order_id", ord.ID).Str("user_id", userID).Msg("order created")
	return ord, nil
}

func (u *paymentUC) CaptureOrder(ctx context.Context, orderID, userID string) (model.OrderStatus, bool, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.CaptureOrder")()

	if orderID == "" || userID == "" {
		return "", false, domain.ErrInvalidArgument
	}

	res, err := u.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		return "", false, err
	}
	if !res.Status.Completed() {
		// Not a failure: the caller branches on the status explicitly.
		u.log.Info().Str("order_id", orderID).Str("status", string(res.Status)).Msg("capture not completed, no entitlement change")
		return res.Status, false, nil
	}

	// Capture succeeded upstream. A store failure past this point leaves the
	// provider believing payment succeeded while the record stays FREE; the
	// error surfaces and no compensating action is taken.
	if err := u.entitlement.Grant(ctx, userID, model.SourceCapture, orderID); err != nil {
		return res.Status, true, err
	}
	return res.Status, true, nil
}
