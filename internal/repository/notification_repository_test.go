package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"taskboard/internal/repository"
)

func TestNotificationRepository_MarkRead(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET "is_read"=\$1 WHERE id = \$2 AND user_id = \$3`).
		WithArgs(true, id, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := repo.MarkRead(context.Background(), id, userID)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead_OtherUser(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET "is_read"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := repo.MarkRead(context.Background(), uuid.New(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_Delete_ScopedToOwner(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "notifications" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := repo.Delete(context.Background(), id, userID)

	// Assert
	assert.ErrorIs(t, err, repository.ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_FindOrCreate_Existing(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewWorkspaceRepository(gormDB)
	wsID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "workspaces" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(wsID.String(), "Roadmap"))

	// Act
	ws, err := repo.FindOrCreate(context.Background(), "Roadmap")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, wsID, ws.ID)
	assert.Equal(t, "Roadmap", ws.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_FindOrCreate_Inserts(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewWorkspaceRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "workspaces" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "workspaces" .* ON CONFLICT DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	// Act
	ws, err := repo.FindOrCreate(context.Background(), "Roadmap")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "Roadmap", ws.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
