package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
)

func newFlyerRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func flyerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "supplier_id", "name", "action_id", "action_name", "valid_from", "valid_to", "status",
		"completion_percentage", "rejection_reason", "auto_save_version", "end_user_authored",
		"last_edited_at", "published_at", "created_at", "updated_at",
	})
}

func TestFlyerRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO flyers")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	flyer := &models.Flyer{SupplierID: "sup-1", Name: "Summer Sale"}
	require.NoError(t, repo.Create(context.Background(), flyer))
	require.NotEmpty(t, flyer.ID)
	require.Equal(t, models.FlyerStatusDraft, flyer.Status)
	require.False(t, flyer.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlyerRepositoryGetByIDAssemblesGraph(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, supplier_id, name")).
		WithArgs("f1").
		WillReturnRows(flyerRows().
			AddRow("f1", "sup-1", "Summer Sale", nil, nil, nil, nil, "DRAFT", 25, nil, 0, false, now, nil, now, now))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, flyer_id, page_number, footer_promo_id FROM flyer_pages")).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "flyer_id", "page_number", "footer_promo_id"}).
			AddRow("page-1", "f1", 1, nil).
			AddRow("page-2", "f1", 2, nil))

	slotRows := sqlmock.NewRows([]string{"id", "page_id", "position", "slot_type", "product_id", "promo_id", "promo_size"})
	for pos := 0; pos < 8; pos++ {
		slotRows.AddRow("s1-"+string(rune('a'+pos)), "page-1", pos, "EMPTY", nil, nil, nil)
	}
	slotRows.AddRow("s2-a", "page-2", 0, "PRODUCT", "prod-1", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM flyer_slots s")).
		WithArgs("f1").
		WillReturnRows(slotRows)

	flyer, err := repo.GetByID(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, flyer.Pages, 2)
	require.Len(t, flyer.Pages[0].Slots, 8)
	require.Len(t, flyer.Pages[1].Slots, 1)
	require.Equal(t, "prod-1", *flyer.Pages[1].Slots[0].ProductID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlyerRepositorySetStatusLocksRow(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM flyers WHERE id = $1 FOR UPDATE")).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("f1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flyers SET status =")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetStatus(context.Background(), StatusChange{
		FlyerID: "f1",
		Status:  models.FlyerStatusPendingApproval,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlyerRepositorySetStatusUnknownFlyer(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM flyers WHERE id = $1 FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.SetStatus(context.Background(), StatusChange{FlyerID: "missing", Status: models.FlyerStatusExpired})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func expectLockedGraphLoad(mock sqlmock.Sqlmock, now time.Time) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM flyers WHERE id = $1 FOR UPDATE")).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("f1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, supplier_id, name")).
		WithArgs("f1").
		WillReturnRows(flyerRows().
			AddRow("f1", "sup-1", "Summer Sale", nil, nil, nil, nil, "DRAFT", 25, nil, 0, false, now, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, flyer_id, page_number, footer_promo_id FROM flyer_pages")).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "flyer_id", "page_number", "footer_promo_id"}).
			AddRow("page-1", "f1", 1, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM flyer_slots s")).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "page_id", "position", "slot_type", "product_id", "promo_id", "promo_size"}).
			AddRow("slot-1", "page-1", 0, "EMPTY", nil, nil, nil))
}

func TestFlyerRepositoryMutateWritesUnderLock(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	expectLockedGraphLoad(mock, time.Now())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flyer_slots SET slot_type =")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flyers SET completion_percentage = $2")).
		WithArgs("f1", 55, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Mutate(context.Background(), "f1", func(flyer *models.Flyer) (*FlyerMutation, error) {
		require.Len(t, flyer.Pages, 1)
		slot := flyer.Pages[0].Slots[0]
		productID := "prod-1"
		slot.SlotType = models.SlotTypeProduct
		slot.ProductID = &productID
		return &FlyerMutation{Slots: []models.Slot{slot}, Completion: 55}, nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlyerRepositoryMutateRollsBackOnValidationError(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	expectLockedGraphLoad(mock, time.Now())
	mock.ExpectRollback()

	wantErr := errors.New("duplicate placement")
	err := repo.Mutate(context.Background(), "f1", func(flyer *models.Flyer) (*FlyerMutation, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlyerRepositoryMutateUnknownFlyer(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM flyers WHERE id = $1 FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Mutate(context.Background(), "missing", func(flyer *models.Flyer) (*FlyerMutation, error) {
		t.Fatal("callback must not run for an unknown flyer")
		return nil, nil
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlyerRepositoryBumpAutoSave(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE flyers SET auto_save_version = auto_save_version + 1")).
		WithArgs("f1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"auto_save_version"}).AddRow(int64(4)))

	version, err := repo.BumpAutoSave(context.Background(), "f1")
	require.NoError(t, err)
	require.Equal(t, int64(4), version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlyerRepositoryExpireActiveBefore(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	boundary := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flyers SET status = $1")).
		WithArgs(models.FlyerStatusExpired, models.FlyerStatusActive, sqlmock.AnyArg(), boundary).
		WillReturnResult(sqlmock.NewResult(0, 2))

	moved, err := repo.ExpireActiveBefore(context.Background(), boundary)
	require.NoError(t, err)
	require.Equal(t, int64(2), moved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlyerRepositoryProductInActiveFlyer(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(models.FlyerStatusActive, "prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := repo.ProductInActiveFlyer(context.Background(), "prod-1")
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlyerRepositoryGetPDFDefaultsMime(t *testing.T) {
	db, mock, cleanup := newFlyerRepoMock(t)
	defer cleanup()

	repo := NewFlyerRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pdf_data, pdf_mime FROM flyers")).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"pdf_data", "pdf_mime"}).AddRow([]byte("%PDF-1.4"), nil))

	data, mime, err := repo.GetPDF(context.Background(), "f1")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4"), data)
	require.Equal(t, "application/pdf", mime)
	require.NoError(t, mock.ExpectationsWereMet())
}
