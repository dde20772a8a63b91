package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/dunelark/storefront/internal/domain"
)

const (
	// UserIDHeader carries the authenticated user ID, set by the auth layer in
	// front of this service.
	UserIDHeader = "X-User-ID"

	// GuestSessionCookie tracks anonymous shoppers.
	GuestSessionCookie = "cart_session"
)

// requestIdentity resolves the caller's identity: an authenticated user when
// the auth layer set the user header, otherwise a guest keyed by the session
// cookie. Guests without a cookie get one when createGuest is true.
func requestIdentity(c echo.Context, createGuest bool) (domain.Identity, error) {
	if raw := c.Request().Header.Get(UserIDHeader); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.Identity{}, domain.Invalid("identity.resolve", "malformed user ID")
		}
		return domain.UserIdentity(pgtype.UUID{Bytes: id, Valid: true}), nil
	}

	if cookie, err := c.Cookie(GuestSessionCookie); err == nil && cookie.Value != "" {
		return domain.GuestIdentity(cookie.Value), nil
	}
	if !createGuest {
		return domain.Identity{}, domain.ErrCartNotFound
	}

	token, err := newSessionToken()
	if err != nil {
		return domain.Identity{}, domain.Internal(err, "identity.resolve", "failed to generate session token")
	}
	c.SetCookie(&http.Cookie{
		Name:     GuestSessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return domain.GuestIdentity(token), nil
}

// userIdentity is requestIdentity restricted to authenticated users.
func userIdentity(c echo.Context) (domain.Identity, error) {
	identity, err := requestIdentity(c, false)
	if err != nil {
		return domain.Identity{}, domain.ErrGuestCheckout
	}
	if !identity.IsUser() {
		return domain.Identity{}, domain.ErrGuestCheckout
	}
	return identity, nil
}

func newSessionToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// parseUUIDParam parses a path parameter as a UUID.
func parseUUIDParam(c echo.Context, name string) (pgtype.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return pgtype.UUID{}, domain.Errorf(domain.EINVALID, "request.parse", "malformed %s", name)
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}
