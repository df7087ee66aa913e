package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func fixed() *project.FixedWage {
	published := time.Date(2025, 1, 30, 0, 0, 0, 0, project.JST)
	return &project.FixedWage{
		Visible: project.Visible{
			Platform:        project.Coconala,
			ExternalID:      "4000001",
			Title:           "LP制作",
			Category:        "Web制作",
			Description:     "<p>詳細 <b>です</b></p>",
			PublicationDate: published,
			IsRecruiting:    true,
		},
		Budget: project.Point(project.Yen(50000)),
	}
}

func TestSaveManyUpsertsInOneTransaction(t *testing.T) {
	s, mock := newMock(t)
	f := fixed()
	hidden := &project.Hidden{Platform: project.Lancers, ExternalID: "77"}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO projects")
	prep.ExpectExec().
		WithArgs("coconala", "4000001", false, "fixed", "LP制作", "Web制作", f.Description, "詳細 です",
			f.PublicationDate, nil, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("lancers", "77", true, nil, nil, nil, nil, nil, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveMany(context.Background(), []project.Project{f, hidden}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveManyRollsBackOnFailure(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO projects").
		ExpectExec().
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.SaveMany(context.Background(), []project.Project{fixed()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coconala:4000001")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveManyRollsBackWhenDescriptionCannotBeFlattened(t *testing.T) {
	s, mock := newMock(t)
	orig := plainText
	plainText = func(string) (string, error) { return "", errors.New("tokenizer failed") }
	t.Cleanup(func() { plainText = orig })

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO projects")
	mock.ExpectRollback()

	err := s.SaveMany(context.Background(), []project.Project{fixed()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coconala:4000001")
	assert.Contains(t, err.Error(), "tokenizer failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveManyEmptyBatchSkipsDatabase(t *testing.T) {
	s, mock := newMock(t)
	require.NoError(t, s.SaveMany(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProjectsDecodesPayload(t *testing.T) {
	s, mock := newMock(t)
	f := fixed()
	payload, err := json.Marshal(f)
	require.NoError(t, err)
	seen := time.Date(2025, 2, 1, 3, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("coconala", false, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectQuery("SELECT payload, ignored").
		WithArgs("coconala", false, false, 200, 0).
		WillReturnRows(sqlmock.NewRows([]string{"payload", "ignored", "first_seen_at", "updated_at"}).
			AddRow(payload, false, seen, seen))

	records, total, err := s.ListProjects(context.Background(), Filter{Platform: project.Coconala, Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 41, total)
	require.Len(t, records, 1)
	assert.Equal(t, f, records[0].Project)
	assert.Equal(t, seen, records[0].FirstSeenAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProjectNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("SELECT payload").
		WithArgs("lancers", "9").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "ignored", "first_seen_at", "updated_at"}))

	_, err := s.GetProject(context.Background(), project.Key{Platform: project.Lancers, ExternalID: "9"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkIgnored(t *testing.T) {
	s, mock := newMock(t)
	key := project.Key{Platform: project.CrowdWorks, ExternalID: "123"}

	mock.ExpectExec("UPDATE projects").
		WithArgs("crowdworks", "123", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE projects").
		WithArgs("crowdworks", "123", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.MarkIgnored(context.Background(), key, true))
	assert.ErrorIs(t, s.MarkIgnored(context.Background(), key, true), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpired(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("DELETE FROM projects").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.DeleteExpired(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRunMigrationsExecutesEmbeddedSchema(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS projects").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.RunMigrations(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 200))
	assert.Equal(t, 200, clampLimit(1000, 20, 200))
	assert.Equal(t, 50, clampLimit(50, 20, 200))
}
