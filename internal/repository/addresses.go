package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getAddress = `
SELECT id, user_id, full_name, line1, line2, city, region, postal_code, country, phone, created_at
FROM addresses
WHERE id = $1
`

func (q *Queries) GetAddress(ctx context.Context, id pgtype.UUID) (Address, error) {
	row := q.db.QueryRow(ctx, getAddress, id)
	var a Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.FullName,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.Region,
		&a.PostalCode,
		&a.Country,
		&a.Phone,
		&a.CreatedAt,
	)
	return a, err
}
