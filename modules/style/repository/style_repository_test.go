package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"booking-router/core/database"
	"booking-router/modules/style/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var styleCols = []string{"id", "email", "bg_color", "font_size", "created_at", "updated_at"}

func setupRepo(t *testing.T) (*StyleRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStyleRepository(database.New(sqlx.NewDb(db, "postgres"))), mock
}

func TestUpsert_KeyedByEmail(t *testing.T) {
	repo, mock := setupRepo(t)
	id, now := uuid.New(), time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (email) DO UPDATE`)).
		WithArgs("ops@acme.test", "#112233", 16).
		WillReturnRows(sqlmock.NewRows(styleCols).AddRow(id.String(), "ops@acme.test", "#112233", 16, now, now))

	saved, err := repo.Upsert(context.Background(), &entity.StyleConfiguration{
		Email: "ops@acme.test", BgColor: "#112233", FontSize: 16,
	})
	require.NoError(t, err)
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, 16, saved.FontSize)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_Empty(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM style_configurations ORDER BY created_at`)).
		WillReturnRows(sqlmock.NewRows(styleCols))

	styles, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, styles)
	assert.NoError(t, mock.ExpectationsWereMet())
}
