//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"trading-journal-api/internal/domain"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
	"trading-journal-api/internal/usecase"
)

func newRedemptionFixture() (*memInviteCodeRepo, *memRedemptionRepo, *memSubscriptionRepo, usecase.RedemptionUseCase) {
	codes := newMemInviteCodeRepo()
	redemptions := newMemRedemptionRepo()
	subs := newMemSubscriptionRepo()
	uc := usecase.NewRedemptionUseCase(codes, redemptions, subs, &mockTxManager{}, testLogger())
	return codes, redemptions, subs, uc
}

func mustCode(t *testing.T, code string, tier model.Tier, maxUses *int, expiresAt *time.Time) *model.InviteCode {
	t.Helper()
	ic, err := model.NewInviteCode(code, tier, "", maxUses, expiresAt, "")
	if err != nil {
		t.Fatalf("NewInviteCode: %v", err)
	}
	return ic
}

func TestRedeem_SingleUseCodeFlow(t *testing.T) {
	ctx := context.Background()
	codes, _, subs, uc := newRedemptionFixture()

	one := 1
	ic := mustCode(t, "STARGATE-MAX-AB12CD", model.TierMax, &one, nil)
	if err := codes.Save(ctx, nil, ic); err != nil {
		t.Fatalf("save: %v", err)
	}

	tier, err := uc.Redeem(ctx, "user-u", "STARGATE-MAX-AB12CD")
	if err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if tier != model.TierMax {
		t.Fatalf("tier = %q, want max", tier)
	}
	if sub := subs.get("user-u"); sub == nil || sub.Tier != model.TierMax {
		t.Fatalf("subscription row not upgraded: %+v", sub)
	}
	if got, _ := codes.FindByID(ctx, nil, ic.ID); got.CurrentUses != 1 {
		t.Fatalf("current_uses = %d, want 1", got.CurrentUses)
	}

	// Same user again: the prior redemption wins over exhaustion even
	// though the single-use code is now spent.
	_, err = uc.Redeem(ctx, "user-u", "STARGATE-MAX-AB12CD")
	if err != domain.ErrAlreadyRedeemed {
		t.Fatalf("second redemption err = %v, want ErrAlreadyRedeemed", err)
	}

	// Anyone else only sees the exhausted code.
	if _, err := uc.Redeem(ctx, "user-v", "STARGATE-MAX-AB12CD"); err != domain.ErrCodeExhausted {
		t.Fatalf("other user err = %v, want ErrCodeExhausted", err)
	}
	if got, _ := codes.FindByID(ctx, nil, ic.ID); got.CurrentUses != 1 {
		t.Fatalf("current_uses = %d after rejections, want 1", got.CurrentUses)
	}
}

func TestRedeem_AlreadyRedeemed(t *testing.T) {
	ctx := context.Background()
	codes, _, _, uc := newRedemptionFixture()

	ic := mustCode(t, "PRO-REUSE-XX", model.TierPro, nil, nil)
	if err := codes.Save(ctx, nil, ic); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := uc.Redeem(ctx, "user-a", "PRO-REUSE-XX"); err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if _, err := uc.Redeem(ctx, "user-a", "PRO-REUSE-XX"); err != domain.ErrAlreadyRedeemed {
		t.Fatalf("repeat redemption err = %v, want ErrAlreadyRedeemed", err)
	}

	// A different user can still redeem the unlimited code.
	if _, err := uc.Redeem(ctx, "user-b", "PRO-REUSE-XX"); err != nil {
		t.Fatalf("other user redemption: %v", err)
	}
}

func TestRedeem_DifferentCodeUpdatesTier(t *testing.T) {
	ctx := context.Background()
	codes, _, subs, uc := newRedemptionFixture()

	pro := mustCode(t, "PRO-FIRST", model.TierPro, nil, nil)
	max := mustCode(t, "MAX-SECOND", model.TierMax, nil, nil)
	_ = codes.Save(ctx, nil, pro)
	_ = codes.Save(ctx, nil, max)

	if _, err := uc.Redeem(ctx, "user-u", "PRO-FIRST"); err != nil {
		t.Fatalf("redeem pro: %v", err)
	}
	if _, err := uc.Redeem(ctx, "user-u", "MAX-SECOND"); err != nil {
		t.Fatalf("redeem max: %v", err)
	}

	sub := subs.get("user-u")
	if sub == nil || sub.Tier != model.TierMax {
		t.Fatalf("subscription = %+v, want tier max", sub)
	}
	if sub.GrantedByCodeID == nil || *sub.GrantedByCodeID != max.ID {
		t.Fatalf("granted_by = %v, want %s", sub.GrantedByCodeID, max.ID)
	}
}

func TestRedeem_ValidationOrder(t *testing.T) {
	ctx := context.Background()
	yesterday := time.Now().Add(-24 * time.Hour)
	zero := 0

	t.Run("unknown code", func(t *testing.T) {
		_, _, _, uc := newRedemptionFixture()
		if _, err := uc.Redeem(ctx, "u", "NOPE"); err != domain.ErrCodeNotFound {
			t.Fatalf("err = %v, want ErrCodeNotFound", err)
		}
	})

	t.Run("inactive wins over expired and exhausted", func(t *testing.T) {
		codes, _, _, uc := newRedemptionFixture()
		ic := mustCode(t, "DEAD-CODE", model.TierPro, nil, &yesterday)
		ic.IsActive = false
		ic.MaxUses = &zero
		_ = codes.Save(ctx, nil, ic)

		if _, err := uc.Redeem(ctx, "u", "DEAD-CODE"); err != domain.ErrCodeInactive {
			t.Fatalf("err = %v, want ErrCodeInactive", err)
		}
	})

	t.Run("expired with zero uses", func(t *testing.T) {
		codes, _, _, uc := newRedemptionFixture()
		ic := mustCode(t, "OLD-CODE", model.TierPro, nil, &yesterday)
		_ = codes.Save(ctx, nil, ic)

		if _, err := uc.Redeem(ctx, "u", "OLD-CODE"); err != domain.ErrCodeExpired {
			t.Fatalf("err = %v, want ErrCodeExpired", err)
		}
		if got, _ := codes.FindByID(ctx, nil, ic.ID); got.CurrentUses != 0 {
			t.Fatalf("current_uses mutated on rejected redemption: %d", got.CurrentUses)
		}
	})
}

func TestRedeem_MaxUsesNeverExceeded(t *testing.T) {
	ctx := context.Background()
	codes, _, _, uc := newRedemptionFixture()

	n := 3
	ic := mustCode(t, "PRO-LIMITED", model.TierPro, &n, nil)
	_ = codes.Save(ctx, nil, ic)

	users := []string{"u1", "u2", "u3", "u4", "u5"}
	success := 0
	for _, u := range users {
		if _, err := uc.Redeem(ctx, u, "PRO-LIMITED"); err == nil {
			success++
		} else if err != domain.ErrCodeExhausted {
			t.Fatalf("unexpected err for %s: %v", u, err)
		}
	}

	if success != n {
		t.Fatalf("successes = %d, want %d", success, n)
	}
	got, _ := codes.FindByID(ctx, nil, ic.ID)
	if got.CurrentUses != n {
		t.Fatalf("current_uses = %d, want %d", got.CurrentUses, n)
	}
}

func TestRedeem_NormalizesInput(t *testing.T) {
	ctx := context.Background()
	codes, _, _, uc := newRedemptionFixture()

	ic := mustCode(t, "PRO-CASE-01", model.TierPro, nil, nil)
	_ = codes.Save(ctx, nil, ic)

	if _, err := uc.Redeem(ctx, "u", "  pro-case-01  "); err != nil {
		t.Fatalf("normalized redemption failed: %v", err)
	}
	if _, err := uc.Redeem(ctx, "u2", ""); err != domain.ErrInvalidArgument {
		t.Fatalf("empty code err = %v, want ErrInvalidArgument", err)
	}
}

func TestRedeem_TxAbortsOnInsertConflict(t *testing.T) {
	ctx := context.Background()
	codes, redemptions, subs, _ := newRedemptionFixture()

	ic := mustCode(t, "PRO-RACE-01", model.TierPro, nil, nil)
	_ = codes.Save(ctx, nil, ic)

	// Simulate a concurrent duplicate that slipped past the existence
	// check: Exists says no, the insert hits the constraint.
	redemptions.ExistsFunc = func(ctx context.Context, tx repository.Tx, codeID, userID string) (bool, error) {
		return false, nil
	}
	redemptions.InsertFunc = func(ctx context.Context, tx repository.Tx, r *model.Redemption) error {
		return domain.ErrAlreadyRedeemed
	}

	uc := usecase.NewRedemptionUseCase(codes, redemptions, subs, &mockTxManager{}, testLogger())
	if _, err := uc.Redeem(ctx, "user-u", "PRO-RACE-01"); err != domain.ErrAlreadyRedeemed {
		t.Fatalf("err = %v, want ErrAlreadyRedeemed", err)
	}
}

// invalidatingSubs records post-commit cache invalidations.
type invalidatingSubs struct {
	*memSubscriptionRepo
	invalidated []string
}

func (s *invalidatingSubs) InvalidateUser(ctx context.Context, userID string) error {
	s.invalidated = append(s.invalidated, userID)
	return nil
}

func TestRedeem_InvalidatesCacheAfterCommit(t *testing.T) {
	ctx := context.Background()
	codes := newMemInviteCodeRepo()
	subs := &invalidatingSubs{memSubscriptionRepo: newMemSubscriptionRepo()}
	uc := usecase.NewRedemptionUseCase(codes, newMemRedemptionRepo(), subs, &mockTxManager{}, testLogger())

	ic := mustCode(t, "PRO-CACHE-01", model.TierPro, nil, nil)
	_ = codes.Save(ctx, nil, ic)

	if _, err := uc.Redeem(ctx, "user-u", "PRO-CACHE-01"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if len(subs.invalidated) != 1 || subs.invalidated[0] != "user-u" {
		t.Fatalf("invalidated = %v, want [user-u]", subs.invalidated)
	}

	// A rejected redemption writes nothing and leaves the cache alone.
	if _, err := uc.Redeem(ctx, "user-u", "PRO-CACHE-01"); err != domain.ErrAlreadyRedeemed {
		t.Fatalf("repeat err = %v, want ErrAlreadyRedeemed", err)
	}
	if len(subs.invalidated) != 1 {
		t.Fatalf("invalidated after rejection = %v", subs.invalidated)
	}
}
