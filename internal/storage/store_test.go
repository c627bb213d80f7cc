package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesage-ai/codesage/internal/config"
	"github.com/codesage-ai/codesage/internal/core"
	"github.com/codesage-ai/codesage/internal/db"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	cfg := &config.Config{
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}
	conn, cleanup, err := db.Open(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return NewStore(conn)
}

func newTestUser(t *testing.T, store Store, email string) *core.User {
	t.Helper()
	user := &core.User{
		FullName:     "Ada Lovelace",
		Email:        email,
		PasswordHash: "$2a$10$notarealhash",
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func sampleOutput(summary string) core.ReviewOutput {
	return core.ReviewOutput{
		Summary: summary,
		Bugs: []core.Finding{
			{Issue: "off-by-one", Severity: core.SeverityMedium, Explanation: "Loop bound excludes the last element."},
		},
		Security:      []core.Finding{},
		BestPractices: []core.Finding{},
		ImprovedCode:  "package main",
	}
}

func TestCreateUserAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, store, "ada@example.com")
	require.NotEmpty(t, user.ID)

	byEmail, err := store.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", byID.FullName)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := newTestStore(t)

	newTestUser(t, store, "ada@example.com")
	err := store.CreateUser(context.Background(), &core.User{
		FullName:     "Someone Else",
		Email:        "ada@example.com",
		PasswordHash: "x",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSaveAndGetReview(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "ada@example.com")

	review := &core.Review{
		UserID: user.ID,
		Input:  "func main() {}",
		Output: sampleOutput("short summary"),
	}
	require.NoError(t, store.SaveReview(ctx, review))
	require.NotEmpty(t, review.ID)

	got, err := store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "func main() {}", got.Input)
	assert.Equal(t, "short summary", got.Output.Summary)
	assert.Len(t, got.Output.Bugs, 1)
	assert.NotNil(t, got.Output.Security)

	_, err = store.GetReview(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReviewsForUserNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "ada@example.com")
	other := newTestUser(t, store, "grace@example.com")

	for i, summary := range []string{"first", "second", "third"} {
		review := &core.Review{
			UserID: user.ID,
			Input:  "code",
			Output: sampleOutput(summary),
		}
		// Force distinct, increasing timestamps.
		review.CreatedAt = baseTime(i)
		require.NoError(t, store.SaveReview(ctx, review))
	}
	require.NoError(t, store.SaveReview(ctx, &core.Review{
		UserID: other.ID,
		Input:  "other code",
		Output: sampleOutput("not mine"),
	}))

	reviews, err := store.ListReviewsForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, "third", reviews[0].Output.Summary)
	assert.Equal(t, "first", reviews[2].Output.Summary)

	all, err := store.ListReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func baseTime(i int) time.Time {
	return time.Date(2026, 1, 1, 12, 0, i, 0, time.UTC)
}

func TestDeleteReview(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "ada@example.com")
	other := newTestUser(t, store, "grace@example.com")

	review := &core.Review{UserID: user.ID, Input: "code", Output: sampleOutput("s")}
	require.NoError(t, store.SaveReview(ctx, review))

	// A different user cannot delete someone else's review.
	err := store.DeleteReview(ctx, other.ID, review.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteReview(ctx, user.ID, review.ID))
	_, err = store.GetReview(ctx, review.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteReview(ctx, user.ID, review.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
