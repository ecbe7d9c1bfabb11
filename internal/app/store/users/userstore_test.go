package userstore

import (
	"testing"

	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/app/system/indexes"
	"github.com/exodologio/exodologio/internal/domain/models"
	"github.com/exodologio/exodologio/internal/testutil"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	s := New(db)

	created, err := s.Create(ctx, models.User{
		Email:       "  Maria@Example.GR ",
		DisplayName: " Μαρία ",
		AuthMethod:  "password",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "maria@example.gr" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.DisplayName != "Μαρία" {
		t.Errorf("display name not trimmed: %q", created.DisplayName)
	}

	got, err := s.GetByEmail(ctx, "MARIA@example.gr")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail returned wrong user")
	}

	byID, err := s.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != created.Email {
		t.Errorf("GetByID email = %q", byID.Email)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	s := New(db)

	u := models.User{Email: "dup@example.gr", AuthMethod: "password"}
	if _, err := s.Create(ctx, u); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := s.Create(ctx, u)
	if errs.KindOf(err) != errs.EmailTaken {
		t.Errorf("second Create kind = %v, want EmailTaken", errs.KindOf(err))
	}
}

func TestCreate_BadAuthMethod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db)
	_, err := s.Create(ctx, models.User{Email: "x@example.gr", AuthMethod: "magic"})
	if errs.KindOf(err) != errs.ValidationFailed {
		t.Errorf("kind = %v, want ValidationFailed", errs.KindOf(err))
	}
}

func TestSetHousehold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db)
	f := testutil.NewFixtures(t, db)
	u := f.CreateUser(ctx, "move@example.gr", "Mover")
	h := f.CreateHousehold(ctx, u, "spiti-mas")

	other := f.CreateUser(ctx, "other@example.gr", "Other")
	if err := s.SetHousehold(ctx, other.ID, &h.ID); err != nil {
		t.Fatalf("SetHousehold: %v", err)
	}
	got, err := s.GetByID(ctx, other.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.HouseholdID == nil || *got.HouseholdID != h.ID {
		t.Errorf("household pointer = %v", got.HouseholdID)
	}

	// Clearing the pointer.
	if err := s.SetHousehold(ctx, other.ID, nil); err != nil {
		t.Fatalf("clear SetHousehold: %v", err)
	}
	got, _ = s.GetByID(ctx, other.ID)
	if got.HouseholdID != nil {
		t.Errorf("pointer not cleared: %v", got.HouseholdID)
	}
}
