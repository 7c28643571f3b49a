//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/adapter"
	"paypal-premium-service/internal/usecase"
)

func saleEvent(customID, transmissionID string) model.WebhookEvent {
	return model.WebhookEvent{
		ID:         "WH-1",
		Kind:       model.EventSaleCompleted,
		RawKind:    "PAYMENT.SALE.COMPLETED",
		ResourceID: "SALE-1",
		CustomID:   customID,
		Signature:  model.SignatureHeaders{TransmissionID: transmissionID},
	}
}

func TestEntitlementGrantIdempotent(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["u1"] = &model.User{ID: "u1", Email: "a@b.com"}
	uc := usecase.NewEntitlementUseCase(repo, nil, nil, newTestLogger())

	for i := 0; i < 3; i++ {
		if err := uc.Grant(context.Background(), "u1", model.SourceWebhook, "WH-1"); err != nil {
			t.Fatalf("grant %d: %v", i, err)
		}
	}
	if !repo.users["u1"].Premium {
		t.Fatal("expected premium after grant")
	}
}

func TestEntitlementCaptureThenWebhookConverges(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["u1"] = &model.User{ID: "u1"}
	uc := usecase.NewEntitlementUseCase(repo, nil, nil, newTestLogger())
	ctx := context.Background()

	if err := uc.Grant(ctx, "u1", model.SourceCapture, "ORDER-1"); err != nil {
		t.Fatalf("capture grant: %v", err)
	}
	out, err := uc.HandleEvent(ctx, saleEvent("u1", "tx-1"), adapter.VerificationSuccess)
	if err != nil {
		t.Fatalf("webhook after capture: %v", err)
	}
	if out != usecase.OutcomeGranted {
		t.Fatalf("outcome = %s, want granted", out)
	}
	if !repo.users["u1"].Premium {
		t.Fatal("expected premium to remain set")
	}
}

func TestEntitlementHandleEvent(t *testing.T) {
	t.Run("unverified event mutates nothing", func(t *testing.T) {
		repo := newMockUserRepo()
		repo.users["u1"] = &model.User{ID: "u1"}
		uc := usecase.NewEntitlementUseCase(repo, nil, nil, newTestLogger())

		for _, status := range []adapter.VerificationStatus{adapter.VerificationFailure, adapter.VerificationError} {
			out, err := uc.HandleEvent(context.Background(), saleEvent("u1", "tx-1"), status)
			if err != nil {
				t.Fatalf("%s: %v", status, err)
			}
			if out != usecase.OutcomeNotVerified {
				t.Fatalf("%s: outcome = %s, want not_verified", status, out)
			}
		}
		if repo.users["u1"].Premium {
			t.Fatal("unverified event must not grant")
		}
		if repo.premiumWrites != 0 {
			t.Fatalf("premium writes = %d, want 0", repo.premiumWrites)
		}
	})

	t.Run("missing correlation id is acknowledged", func(t *testing.T) {
		repo := newMockUserRepo()
		uc := usecase.NewEntitlementUseCase(repo, nil, nil, newTestLogger())

		out, err := uc.HandleEvent(context.Background(), saleEvent("", "tx-1"), adapter.VerificationSuccess)
		if err != nil {
			t.Fatal(err)
		}
		if out != usecase.OutcomeNoUser {
			t.Fatalf("outcome = %s, want no_user", out)
		}
	})

	t.Run("unknown user is acknowledged without effect", func(t *testing.T) {
		repo := newMockUserRepo()
		uc := usecase.NewEntitlementUseCase(repo, nil, nil, newTestLogger())

		out, err := uc.HandleEvent(context.Background(), saleEvent("no-such-user", "tx-1"), adapter.VerificationSuccess)
		if err != nil {
			t.Fatal(err)
		}
		if out != usecase.OutcomeNoUser {
			t.Fatalf("outcome = %s, want no_user", out)
		}
		if repo.premiumWrites != 0 {
			t.Fatalf("premium writes = %d, want 0", repo.premiumWrites)
		}
	})

	t.Run("subscription lifecycle events never revoke", func(t *testing.T) {
		repo := newMockUserRepo()
		repo.users["u1"] = &model.User{ID: "u1", Premium: true}
		uc := usecase.NewEntitlementUseCase(repo, nil, nil, newTestLogger())

		for _, kind := range []model.EventKind{
			model.EventSubscriptionCreated,
			model.EventSubscriptionCancelled,
			model.EventSubscriptionPaymentFailed,
		} {
			evt := model.WebhookEvent{ID: "WH-2", Kind: kind, RawKind: kind.String(), CustomID: "u1"}
			out, err := uc.HandleEvent(context.Background(), evt, adapter.VerificationSuccess)
			if err != nil {
				t.Fatalf("%s: %v", kind, err)
			}
			if out != usecase.OutcomeIgnored {
				t.Fatalf("%s: outcome = %s, want ignored", kind, out)
			}
		}
		if !repo.users["u1"].Premium {
			t.Fatal("lifecycle events must not clear premium")
		}
	})

	t.Run("unrecognized kind is acknowledged", func(t *testing.T) {
		repo := newMockUserRepo()
		uc := usecase.NewEntitlementUseCase(repo, nil, nil, newTestLogger())

		evt := model.WebhookEvent{Kind: model.EventUnknown, RawKind: "CHECKOUT.ORDER.APPROVED"}
		out, err := uc.HandleEvent(context.Background(), evt, adapter.VerificationSuccess)
		if err != nil {
			t.Fatal(err)
		}
		if out != usecase.OutcomeIgnored {
			t.Fatalf("outcome = %s, want ignored", out)
		}
	})

	t.Run("duplicate transmission is skipped", func(t *testing.T) {
		repo := newMockUserRepo()
		repo.users["u1"] = &model.User{ID: "u1"}
		uc := usecase.NewEntitlementUseCase(repo, nil, newMockDeduper(), newTestLogger())
		ctx := context.Background()

		out, err := uc.HandleEvent(ctx, saleEvent("u1", "tx-dup"), adapter.VerificationSuccess)
		if err != nil || out != usecase.OutcomeGranted {
			t.Fatalf("first delivery: outcome = %s, err = %v", out, err)
		}
		out, err = uc.HandleEvent(ctx, saleEvent("u1", "tx-dup"), adapter.VerificationSuccess)
		if err != nil {
			t.Fatal(err)
		}
		if out != usecase.OutcomeDuplicate {
			t.Fatalf("second delivery: outcome = %s, want duplicate", out)
		}
		if repo.premiumWrites != 1 {
			t.Fatalf("premium writes = %d, want 1", repo.premiumWrites)
		}
	})

	t.Run("failed delivery is not deduplicated on redelivery", func(t *testing.T) {
		repo := newMockUserRepo()
		repo.users["u1"] = &model.User{ID: "u1"}
		uc := usecase.NewEntitlementUseCase(repo, nil, newMockDeduper(), newTestLogger())
		ctx := context.Background()

		// First delivery hits a transient store outage after the dedup mark.
		repo.errPremium = errors.New("store down")
		if _, err := uc.HandleEvent(ctx, saleEvent("u1", "tx-retry"), adapter.VerificationSuccess); err == nil {
			t.Fatal("expected the store error to surface")
		}

		// The store recovers and the provider redelivers the same transmission.
		repo.errPremium = nil
		out, err := uc.HandleEvent(ctx, saleEvent("u1", "tx-retry"), adapter.VerificationSuccess)
		if err != nil {
			t.Fatalf("redelivery: %v", err)
		}
		if out != usecase.OutcomeGranted {
			t.Fatalf("redelivery outcome = %s, want granted", out)
		}
		if !repo.users["u1"].Premium {
			t.Fatal("redelivery must grant after the outage")
		}
	})

	t.Run("store failure propagates", func(t *testing.T) {
		repo := newMockUserRepo()
		repo.errFind = errors.New("store down")
		uc := usecase.NewEntitlementUseCase(repo, nil, nil, newTestLogger())

		if _, err := uc.HandleEvent(context.Background(), saleEvent("u1", "tx-1"), adapter.VerificationSuccess); err == nil {
			t.Fatal("expected error when the store is unavailable")
		}
	})
}

func TestEntitlementLedger(t *testing.T) {
	t.Run("grants and revokes are recorded", func(t *testing.T) {
		repo := newMockUserRepo()
		repo.users["u1"] = &model.User{ID: "u1"}
		ledger := &mockLedger{}
		uc := usecase.NewEntitlementUseCase(repo, ledger, nil, newTestLogger())
		ctx := context.Background()

		if err := uc.Grant(ctx, "u1", model.SourceCapture, "ORDER-1"); err != nil {
			t.Fatal(err)
		}
		if err := uc.Revoke(ctx, "u1", model.SourceAdmin); err != nil {
			t.Fatal(err)
		}
		entries, err := ledger.ListByUser(ctx, "u1", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 2 {
			t.Fatalf("ledger entries = %d, want 2", len(entries))
		}
		if !entries[0].Premium || entries[0].Source != model.SourceCapture {
			t.Fatalf("unexpected first entry: %+v", entries[0])
		}
		if entries[1].Premium || entries[1].Source != model.SourceAdmin {
			t.Fatalf("unexpected second entry: %+v", entries[1])
		}
	})

	t.Run("ledger failure never fails the grant", func(t *testing.T) {
		repo := newMockUserRepo()
		repo.users["u1"] = &model.User{ID: "u1"}
		ledger := &mockLedger{errAdd: errors.New("db down")}
		uc := usecase.NewEntitlementUseCase(repo, ledger, nil, newTestLogger())

		if err := uc.Grant(context.Background(), "u1", model.SourceWebhook, "WH-1"); err != nil {
			t.Fatalf("grant must succeed despite ledger failure: %v", err)
		}
		if !repo.users["u1"].Premium {
			t.Fatal("expected premium set")
		}
	})
}
