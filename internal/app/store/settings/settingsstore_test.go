package settingsstore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/exodologio/exodologio/internal/domain/models"
	"github.com/exodologio/exodologio/internal/testutil"
)

func TestGet_MissingReturnsDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db)
	householdID := primitive.NewObjectID()

	got, err := s.Get(ctx, householdID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HouseholdID != householdID {
		t.Errorf("household id = %v", got.HouseholdID)
	}
	if len(got.BankWallets) != len(models.DefaultBankWallets) {
		t.Errorf("defaults = %v", got.BankWallets)
	}

	// Defaults were not persisted by the read.
	n, err := db.Collection("household_settings").CountDocuments(ctx, map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Get wrote %d documents", n)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db)
	householdID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if err := s.Seed(ctx, householdID, userID); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// A custom wallet added between seeds must survive a retried seed.
	if err := s.AddBankWallet(ctx, householdID, userID, "Ταμείο σπιτιού"); err != nil {
		t.Fatalf("AddBankWallet: %v", err)
	}
	if err := s.Seed(ctx, householdID, userID); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	got, err := s.Get(ctx, householdID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.BankWallets) != len(models.DefaultBankWallets)+1 {
		t.Errorf("wallets = %v", got.BankWallets)
	}
}

func TestAddBankWallet_Dedup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db)
	householdID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if err := s.Seed(ctx, householdID, userID); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.AddBankWallet(ctx, householdID, userID, "Κουμπαράς"); err != nil {
			t.Fatalf("AddBankWallet #%d: %v", i, err)
		}
	}

	got, err := s.Get(ctx, householdID)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, w := range got.BankWallets {
		if w == "Κουμπαράς" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("wallet appears %d times, want 1", count)
	}
}
