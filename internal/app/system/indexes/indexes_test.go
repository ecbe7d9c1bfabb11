package indexes_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/exodologio/exodologio/internal/app/system/indexes"
	"github.com/exodologio/exodologio/internal/testutil"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesKeyIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	checks := map[string][]string{
		"users":              {"uniq_users_email", "idx_users_household"},
		"households":         {"idx_households_invite"},
		"invite_codes":       {"idx_invites_household"},
		"memberships":        {"uniq_memberships_household_user", "idx_memberships_user"},
		"household_settings": {"uniq_settings_household"},
		"transactions":       {"idx_tx_household_created", "idx_tx_household_date"},
		"audit_events":       {"idx_audit_user_created", "idx_audit_created"},
		"password_resets":    {"uniq_resets_token", "ttl_resets_expires"},
	}

	for coll, wanted := range checks {
		cur, err := db.Collection(coll).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("list indexes on %s: %v", coll, err)
		}
		names := map[string]bool{}
		for cur.Next(ctx) {
			var idx bson.M
			if err := cur.Decode(&idx); err != nil {
				continue
			}
			if name, ok := idx["name"].(string); ok {
				names[name] = true
			}
		}
		cur.Close(ctx)

		for _, want := range wanted {
			if !names[want] {
				t.Errorf("collection %s is missing index %s (has %v)", coll, want, names)
			}
		}
	}
}
