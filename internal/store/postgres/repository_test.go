package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	repo, err := NewWithPool(mock, nil)
	require.NoError(t, err)
	return mock, repo
}

func expectReplace(mock pgxmock.PgxPoolIface, table store.Table, rows int64) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE SCHEMA IF NOT EXISTS "` + table.Schema + `"`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "` + table.Schema + `"."` + table.Name + `"`)).
		WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "` + table.Schema + `"."` + table.Name + `"`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{table.Schema, table.Name}, table.ColumnNames()).
		WillReturnResult(rows)
	mock.ExpectCommit()
}

func TestNewWithPoolRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewWithPool(nil, nil)
	assert.Error(t, err)
	_, err = New(context.Background(), Config{}, nil)
	assert.Error(t, err)
}

func TestSaveSeasonReplacesBothTables(t *testing.T) {
	t.Parallel()

	mock, repo := newMock(t)
	expectReplace(mock, store.SeasonContestants(27), 2)
	expectReplace(mock, store.SeasonEpisodes(27), 1)

	err := repo.SaveSeason(context.Background(), survivor.SeasonResult{
		Stats:       survivor.SeasonStats{Number: 27},
		Contestants: []survivor.Contestant{{Name: "Tyson Apostol"}, {Name: "Ciera Eastin"}},
		Episodes:    []survivor.Episode{{Number: "1"}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDatasetContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	mock, repo := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE SCHEMA").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()
	expectReplace(mock, store.AllContestants, 0)
	expectReplace(mock, store.AllEpisodes, 0)

	err := repo.SaveDataset(context.Background(), survivor.Dataset{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overall.all_seasons")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCastCopyFailureRollsBack(t *testing.T) {
	t.Parallel()

	mock, repo := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE SCHEMA").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("DROP TABLE").WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"overall", "cast_bios"}, store.CastBios.ColumnNames()).
		WillReturnError(errors.New("copy failed"))
	mock.ExpectRollback()

	err := repo.SaveCast(context.Background(), []survivor.CastMember{{Name: "Parvati Shallow", SeasonNumber: 13}})
	require.ErrorContains(t, err, "copy into overall.cast_bios")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeasons(t *testing.T) {
	t.Parallel()

	mock, repo := newMock(t)
	rows := pgxmock.NewRows(store.AllSeasons.ColumnNames()).
		AddRow("Survivor: Borneo", 1, "Richard Hatch", 39, 16, 0, 2, 2, 7,
			false, false, false, 0, false, false, false, false, false)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "overall"."all_seasons" ORDER BY season_number`)).
		WillReturnRows(rows)

	got, err := repo.Seasons(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Richard Hatch", got[0].Winner)
	assert.Equal(t, 39, got[0].NumDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContestantsFilter(t *testing.T) {
	t.Parallel()

	mock, repo := newMock(t)
	rows := pgxmock.NewRows(store.AllContestants.ColumnNames()).
		AddRow("Richard Hatch", "39", "Newport, Rhode Island", []string{"Sole Survivor"}, []string{"Day 39"},
			false, 0, []string{"Tagi", "Rattana"}, "Richard", []string{"Gretchen"},
			false, true, true, 1, "N/A", true)
	season, winner := 1, true
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE season_number = $1 AND is_winner = $2 ORDER BY season_number`)).
		WithArgs(1, true).
		WillReturnRows(rows)

	got, err := repo.Contestants(context.Background(), survivor.ContestantFilter{Season: &season, Winner: &winner})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Tagi", "Rattana"}, got[0].Tribes)
	assert.True(t, got[0].IsWinner)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEpisodesMissingTable(t *testing.T) {
	t.Parallel()

	mock, repo := newMock(t)
	season := 4
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "overall"."all_episodes" WHERE season_number = $1`)).
		WithArgs(4).
		WillReturnError(&pgconn.PgError{Code: undefinedTable})

	_, err := repo.Episodes(context.Background(), &season)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDDL(t *testing.T) {
	t.Parallel()

	stmts := ddl(store.SeasonContestants(5))
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[2], `"from" text`)
	assert.Contains(t, stmts[2], `"tribes" text[]`)
	assert.Contains(t, ddl(store.AllEpisodes)[2], `"ballots" jsonb`)
	assert.Contains(t, ddl(store.CastBios)[2], `"match_score" double precision`)
}
