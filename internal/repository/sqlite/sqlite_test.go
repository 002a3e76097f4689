package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faccoco/web-todo/internal/domain"
	"github.com/faccoco/web-todo/internal/repository"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, NewUserRepository(db).Init(ctx))
	require.NoError(t, NewTodoRepository(db).Init(ctx))

	return db
}

func createUser(t *testing.T, users repository.UserRepository, username, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "salt:digest",
	}
	_, err := users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}
