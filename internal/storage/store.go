// Package storage persists users and their review history.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/codesage-ai/codesage/internal/core"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

// Store defines the interface for all database operations. Reviews are
// append-only: they are inserted once, never updated, and removable only
// one at a time by their owner.
type Store interface {
	CreateUser(ctx context.Context, user *core.User) error
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	GetUserByID(ctx context.Context, id string) (*core.User, error)

	SaveReview(ctx context.Context, review *core.Review) error
	GetReview(ctx context.Context, id string) (*core.Review, error)
	ListReviews(ctx context.Context) ([]core.Review, error)
	ListReviewsForUser(ctx context.Context, userID string) ([]core.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID string) error
}

type sqlStore struct {
	db *sqlx.DB
}

// NewStore creates a Store over the given connection. Queries use `?`
// placeholders and are rebound per driver, so the same store runs on both
// Postgres and the SQLite fallback.
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) CreateUser(ctx context.Context, user *core.User) error {
	existing, err := s.GetUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrDuplicateEmail
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := s.db.Rebind(`INSERT INTO users (id, full_name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query, user.ID, user.FullName, user.Email, user.PasswordHash, user.CreatedAt)
	return err
}

func (s *sqlStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	query := s.db.Rebind(`SELECT id, full_name, email, password_hash, created_at FROM users WHERE email = ?`)

	var u core.User
	if err := s.db.GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *sqlStore) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	query := s.db.Rebind(`SELECT id, full_name, email, password_hash, created_at FROM users WHERE id = ?`)

	var u core.User
	if err := s.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// reviewRow is the wire shape of a review in the database; the structured
// output is stored as a JSON column.
type reviewRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Input     string    `db:"input"`
	Output    string    `db:"output"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *reviewRow) toReview() (*core.Review, error) {
	review := &core.Review{
		ID:        r.ID,
		UserID:    r.UserID,
		Input:     r.Input,
		CreatedAt: r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.Output), &review.Output); err != nil {
		return nil, fmt.Errorf("corrupt review output for %s: %w", r.ID, err)
	}
	review.Output.Normalize()
	return review, nil
}

func (s *sqlStore) SaveReview(ctx context.Context, review *core.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	review.Output.Normalize()

	output, err := json.Marshal(review.Output)
	if err != nil {
		return fmt.Errorf("failed to encode review output: %w", err)
	}

	query := s.db.Rebind(`INSERT INTO reviews (id, user_id, input, output, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query, review.ID, review.UserID, review.Input, string(output), review.CreatedAt)
	return err
}

func (s *sqlStore) GetReview(ctx context.Context, id string) (*core.Review, error) {
	query := s.db.Rebind(`SELECT id, user_id, input, output, created_at FROM reviews WHERE id = ?`)

	var row reviewRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toReview()
}

func (s *sqlStore) ListReviews(ctx context.Context) ([]core.Review, error) {
	query := `SELECT id, user_id, input, output, created_at FROM reviews ORDER BY created_at DESC`
	return s.listReviews(ctx, query)
}

func (s *sqlStore) ListReviewsForUser(ctx context.Context, userID string) ([]core.Review, error) {
	query := s.db.Rebind(`SELECT id, user_id, input, output, created_at FROM reviews WHERE user_id = ? ORDER BY created_at DESC`)
	return s.listReviews(ctx, query, userID)
}

func (s *sqlStore) listReviews(ctx context.Context, query string, args ...any) ([]core.Review, error) {
	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	reviews := make([]core.Review, 0, len(rows))
	for i := range rows {
		review, err := rows[i].toReview()
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, nil
}

func (s *sqlStore) DeleteReview(ctx context.Context, userID, reviewID string) error {
	query := s.db.Rebind(`DELETE FROM reviews WHERE id = ? AND user_id = ?`)
	res, err := s.db.ExecContext(ctx, query, reviewID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
