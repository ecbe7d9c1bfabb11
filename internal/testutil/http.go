package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/exodologio/exodologio/internal/app/system/auth"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID    string
	Name  string
	Email string
}

// SomeUser returns a TestUser with a fresh ObjectID.
func SomeUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test User",
		Email: "user@test.gr",
	}
}

// AuthenticatedRequest creates an httptest request carrying the user in its
// context, as if LoadSessionUser had run.
func AuthenticatedRequest(method, target string, body io.Reader, user TestUser) *http.Request {
	r := httptest.NewRequest(method, target, body)
	return auth.WithUser(r, &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}
