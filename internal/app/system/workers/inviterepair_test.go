package workers_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	householdstore "github.com/exodologio/exodologio/internal/app/store/households"
	settingsstore "github.com/exodologio/exodologio/internal/app/store/settings"
	userstore "github.com/exodologio/exodologio/internal/app/store/users"
	"github.com/exodologio/exodologio/internal/app/system/workers"
	"github.com/exodologio/exodologio/internal/domain/models"
	"github.com/exodologio/exodologio/internal/testutil"
)

func TestSweepRestoresMissingMapping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	log := zap.NewNop()
	users := userstore.New(db)
	settings := settingsstore.New(db)
	households := householdstore.New(db, db.Client(), users, settings, log)

	u, err := users.Create(ctx, models.User{
		Email: "maria@test.gr", DisplayName: "Μαρία", AuthMethod: "password",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	h, err := households.Create(ctx, &u, "Μαρία", "spiti")
	if err != nil {
		t.Fatalf("bootstrap household: %v", err)
	}

	// Simulate a bootstrap that died before the mapping insert.
	if _, err := db.Collection("invite_codes").DeleteOne(ctx, bson.M{"_id": h.InviteCode}); err != nil {
		t.Fatalf("delete mapping: %v", err)
	}

	w := workers.NewInviteRepair(households, log, time.Minute)
	w.Sweep(ctx)

	fixed, err := households.GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("reload household: %v", err)
	}
	if fixed.InviteCode == "" {
		t.Fatal("household still has no invite code")
	}
	owner, err := households.LookupInvite(ctx, fixed.InviteCode)
	if err != nil {
		t.Fatalf("repaired code does not resolve: %v", err)
	}
	if owner != h.ID {
		t.Fatalf("repaired code resolves to %s, want %s", owner.Hex(), h.ID.Hex())
	}
}

func TestSweepLeavesHealthyHouseholdsAlone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	log := zap.NewNop()
	users := userstore.New(db)
	settings := settingsstore.New(db)
	households := householdstore.New(db, db.Client(), users, settings, log)

	u, err := users.Create(ctx, models.User{
		Email: "nikos@test.gr", DisplayName: "Νίκος", AuthMethod: "password",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	h, err := households.Create(ctx, &u, "Νίκος", "healthy")
	if err != nil {
		t.Fatalf("bootstrap household: %v", err)
	}

	w := workers.NewInviteRepair(households, log, time.Minute)
	w.Sweep(ctx)

	after, err := households.GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("reload household: %v", err)
	}
	if after.InviteCode != h.InviteCode {
		t.Fatalf("sweep rotated a healthy code: %q -> %q", h.InviteCode, after.InviteCode)
	}
}
