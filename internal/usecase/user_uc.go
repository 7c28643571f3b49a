package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/repository"
	"paypal-premium-service/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes the user-record operations behind /api/user/*.
type UserUseCase interface {
	// CreateOrUpdate upserts a record, reporting whether it was new.
	CreateOrUpdate(ctx context.Context, userID, email string, premium bool) (isNew bool, err error)
	// SubscriptionStatus returns the premium flag; domain.ErrNotFound for
	// unknown ids.
	SubscriptionStatus(ctx context.Context, userID string) (bool, error)
	// UpdatePremium is the explicit admin entitlement write, the only
	// PREMIUM -> FREE transition in the system.
	UpdatePremium(ctx context.Context, userID string, premium bool) error
	// CheckEmail reports whether a record with this email exists.
	CheckEmail(ctx context.Context, email string) (exists bool, userID string, err error)
}

type userUC struct {
	users       repository.UserRepository
	entitlement EntitlementUseCase
	log         *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, entitlement EntitlementUseCase, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, entitlement: entitlement, log: logger}
}

func (u *userUC) CreateOrUpdate(ctx context.Context, userID, email string, premium bool) (bool, error) {
	defer logging.TraceDuration(u.log, "UserUC.CreateOrUpdate")()

	if userID == "" {
		return false, domain.ErrInvalidArgument
	}

	existing, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !existing.IsZero() {
		fields := map[string]any{"premium": premium}
		if email != "" {
			fields["email"] = model.NormalizeEmail(email)
		}
		return false, u.users.Merge(ctx, userID, fields)
	}

	if err := u.users.Create(ctx, model.NewUser(userID, email, premium)); err != nil {
		return false, err
	}
	u.log.Info().Str("user_id", userID).Msg("user created")
	return true, nil
}

func (u *userUC) SubscriptionStatus(ctx context.Context, userID string) (bool, error) {
	defer logging.TraceDuration(u.log, "UserUC.SubscriptionStatus")()

	usr, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if usr.IsZero() {
		return false, domain.ErrNotFound
	}
	return usr.Premium, nil
}

// UpdatePremium routes through the entitlement use case so the ledger and
// metrics see admin writes too.
func (u *userUC) UpdatePremium(ctx context.Context, userID string, premium bool) error {
	defer logging.TraceDuration(u.log, "UserUC.UpdatePremium")()

	if userID == "" {
		return domain.ErrInvalidArgument
	}
	if premium {
		return u.entitlement.Grant(ctx, userID, model.SourceAdmin, "")
	}
	return u.entitlement.Revoke(ctx, userID, model.SourceAdmin)
}

func (u *userUC) CheckEmail(ctx context.Context, email string) (bool, string, error) {
	defer logging.TraceDuration(u.log, "UserUC.CheckEmail")()

	if !model.ValidEmail(email) {
		return false, "", domain.ErrInvalidArgument
	}
	usr, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return false, "", err
	}
	if usr.IsZero() {
		return false, "", nil
	}
	return true, usr.ID, nil
}
