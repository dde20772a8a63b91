package domain

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Address is a stored shipping or billing address. The core only reads
// addresses; CRUD lives in the account subsystem.
type Address struct {
	ID         pgtype.UUID
	UserID     pgtype.UUID
	FullName   string
	Line1      string
	Line2      pgtype.Text
	City       string
	Region     string
	PostalCode string
	Country    string
	Phone      pgtype.Text
	CreatedAt  pgtype.Timestamptz
}
