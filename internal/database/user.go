package database

import (
	"context"

	"github.com/momentchat/moment/internal/models"
)

// GetUserByID loads one user row. Callers treat any error, including
// pgx.ErrNoRows, as "this connection is anonymous".
func GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	q := `
	SELECT id, email, username, COALESCE(avatar_url, ''), created_at
	FROM users
	WHERE id=$1
	`
	err := DB.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.Username, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
