package resetstore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/testutil"
)

func TestIssueAndConsume(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db)
	userID := primitive.NewObjectID()

	token, err := s.Issue(ctx, userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	got, err := s.Consume(ctx, token)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got != userID {
		t.Errorf("Consume returned %s, want %s", got.Hex(), userID.Hex())
	}

	// Single use.
	if _, err := s.Consume(ctx, token); errs.KindOf(err) != errs.NotFound {
		t.Errorf("second Consume kind = %v, want NotFound", errs.KindOf(err))
	}
}

func TestIssue_InvalidatesOlderTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db)
	userID := primitive.NewObjectID()

	old, err := s.Issue(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := s.Issue(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Consume(ctx, old); errs.KindOf(err) != errs.NotFound {
		t.Errorf("stale token still redeemable (err=%v)", err)
	}
	if _, err := s.Consume(ctx, fresh); err != nil {
		t.Errorf("fresh token rejected: %v", err)
	}
}

func TestConsume_UnknownToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db)
	if _, err := s.Consume(ctx, "nope"); errs.KindOf(err) != errs.NotFound {
		t.Errorf("kind = %v, want NotFound", errs.KindOf(err))
	}
}
