package domain

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// IdentityKind discriminates the two ways a shopper can be known to the store.
type IdentityKind int

const (
	// IdentityUser is an authenticated, registered customer.
	IdentityUser IdentityKind = iota
	// IdentityGuest is an anonymous shopper tracked by an opaque session token.
	IdentityGuest
)

// Identity is the sum type User(id) | Guest(token). A cart, and every cart
// mutation, is scoped to exactly one of the two. The constructors are the only
// way to build one, so the mutual exclusivity holds by construction.
type Identity struct {
	kind   IdentityKind
	userID pgtype.UUID
	token  string
}

// UserIdentity builds an identity for a registered customer.
func UserIdentity(userID pgtype.UUID) Identity {
	return Identity{kind: IdentityUser, userID: userID}
}

// GuestIdentity builds an identity for an anonymous session token.
func GuestIdentity(token string) Identity {
	return Identity{kind: IdentityGuest, token: token}
}

// Kind reports which variant this identity is.
func (i Identity) Kind() IdentityKind { return i.kind }

// IsUser reports whether the identity is an authenticated customer.
func (i Identity) IsUser() bool { return i.kind == IdentityUser }

// UserID returns the user ID. Only meaningful when IsUser() is true.
func (i Identity) UserID() pgtype.UUID { return i.userID }

// Token returns the guest session token. Only meaningful for guests.
func (i Identity) Token() string { return i.token }

// Valid reports whether the identity carries a usable discriminant.
func (i Identity) Valid() bool {
	if i.kind == IdentityUser {
		return i.userID.Valid
	}
	return i.token != ""
}
