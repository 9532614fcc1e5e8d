package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is a registered account with its OAuth credentials and the last
// processed Gmail history watermark.
type User struct {
	ID           int64
	Email        string
	AccessToken  string
	RefreshToken string
	TokenURI     string
	IDToken      string
	Name         string
	GivenName    string
	FamilyName   string
	Picture      string
	Locale       string
	HistoryID    string
}

// Users is the user repository.
type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

const userColumns = `id, email, access_token, refresh_token, token_uri, id_token,
	COALESCE(name, ''), COALESCE(given_name, ''), COALESCE(family_name, ''),
	COALESCE(picture, ''), COALESCE(locale, ''), COALESCE(history_id, '')`

// Upsert inserts the user or, when the email is already registered,
// refreshes the tokens and profile fields.
func (r *Users) Upsert(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (email, access_token, refresh_token, token_uri, id_token,
			name, given_name, family_name, picture, locale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (email) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = CASE WHEN EXCLUDED.refresh_token <> '' THEN EXCLUDED.refresh_token ELSE users.refresh_token END,
			token_uri = EXCLUDED.token_uri,
			id_token = EXCLUDED.id_token,
			name = EXCLUDED.name,
			given_name = EXCLUDED.given_name,
			family_name = EXCLUDED.family_name,
			picture = EXCLUDED.picture,
			locale = EXCLUDED.locale
		RETURNING id, COALESCE(history_id, '')`
	err := r.pool.QueryRow(ctx, query,
		u.Email, u.AccessToken, u.RefreshToken, u.TokenURI, u.IDToken,
		u.Name, u.GivenName, u.FamilyName, u.Picture, u.Locale,
	).Scan(&u.ID, &u.HistoryID)
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", u.Email, err)
	}
	return u, nil
}

// GetByEmail returns nil when no user is registered under the address.
func (r *Users) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", email, err)
	}
	return u, nil
}

// All returns every registered user.
func (r *Users) All(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateAccessToken writes back a refreshed access token.
func (r *Users) UpdateAccessToken(ctx context.Context, userID int64, accessToken string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET access_token = $2 WHERE id = $1`, userID, accessToken)
	if err != nil {
		return fmt.Errorf("update access token for user %d: %w", userID, err)
	}
	return nil
}

// SetHistoryID advances the stored Gmail history watermark.
func (r *Users) SetHistoryID(ctx context.Context, userID int64, historyID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET history_id = $2 WHERE id = $1`, userID, historyID)
	if err != nil {
		return fmt.Errorf("update history id for user %d: %w", userID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.AccessToken, &u.RefreshToken, &u.TokenURI, &u.IDToken,
		&u.Name, &u.GivenName, &u.FamilyName, &u.Picture, &u.Locale, &u.HistoryID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
