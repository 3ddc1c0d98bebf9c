package gormrepo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/repository"
)

func setupTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a second pooled connection would open a separate empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) == 0 {
		models = []interface{}{
			&domain.Property{}, &domain.Unit{}, &domain.User{},
			&domain.Case{}, &domain.Task{}, &domain.MaintenancePlan{}, &domain.CaseComment{},
		}
	}
	require.NoError(t, db.AutoMigrate(models...))
	return db
}

func createTestProperty(t *testing.T, db *gorm.DB, name string) *domain.Property {
	t.Helper()
	p := &domain.Property{Name: name, Address: name + " gatan 1", CreatedAt: time.Now()}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createTestCase(t *testing.T, db *gorm.DB, propertyID uuid.UUID, title string, created time.Time) *domain.Case {
	t.Helper()
	c := &domain.Case{
		PropertyID: propertyID,
		Title:      title,
		Category:   domain.CaseCategoryPlumbing,
		Priority:   domain.PriorityNormal,
		Status:     domain.CaseStatusReported,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestCaseRepository_ListOrdersByCreatedDesc(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCaseRepository(db)
	prop := createTestProperty(t, db, "Solrosen")
	now := time.Now()

	createTestCase(t, db, prop.ID, "first", now.Add(-2*time.Hour))
	createTestCase(t, db, prop.ID, "second", now.Add(-time.Hour))
	createTestCase(t, db, prop.ID, "third", now)

	cases, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cases, 3)
	assert.Equal(t, "third", cases[0].Title)
	assert.Equal(t, "first", cases[2].Title)
}

func TestCaseRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCaseRepository(db)
	ctx := context.Background()
	prop := createTestProperty(t, db, "Solrosen")
	c := createTestCase(t, db, prop.ID, "Läcka", time.Now().Add(-time.Hour))

	at := time.Now().Truncate(time.Second)
	require.NoError(t, repo.UpdateStatus(ctx, c.ID, domain.CaseStatusInProgress, at))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusInProgress, got.Status)
	assert.True(t, got.UpdatedAt.Equal(at))

	err = repo.UpdateStatus(ctx, uuid.New(), domain.CaseStatusDone, at)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCaseRepository_DeleteAndNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCaseRepository(db)
	ctx := context.Background()
	prop := createTestProperty(t, db, "Solrosen")
	c := createTestCase(t, db, prop.ID, "Läcka", time.Now())

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err := repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), repository.ErrNotFound)
}

func TestCaseRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCaseRepository(db)
	prop := createTestProperty(t, db, "Solrosen")
	for i := 0; i < 7; i++ {
		createTestCase(t, db, prop.ID, "Trasig lampa", time.Now().Add(time.Duration(i)*time.Minute))
	}
	createTestCase(t, db, prop.ID, "Stopp i avlopp", time.Now())

	found, err := repo.Search(context.Background(), "LAMPA", 5)
	require.NoError(t, err)
	assert.Len(t, found, 5)

	found, err = repo.Search(context.Background(), "avlopp", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Stopp i avlopp", found[0].Title)
}

func TestCaseRepository_SearchFoldsUnicodeAndEscapesWildcards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCaseRepository(db)
	ctx := context.Background()
	prop := createTestProperty(t, db, "Solrosen")
	createTestCase(t, db, prop.ID, "Ärende om Övrigt", time.Now())
	createTestCase(t, db, prop.ID, "Rabatt 50% i tvättstugan", time.Now())
	createTestCase(t, db, prop.ID, "Trasig lampa", time.Now())

	found, err := repo.Search(ctx, "ärende", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ärende om Övrigt", found[0].Title)

	found, err = repo.Search(ctx, "ÖVRIGT", 5)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = repo.Search(ctx, "%", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Rabatt 50% i tvättstugan", found[0].Title)

	found, err = repo.Search(ctx, "_", 5)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%50\\%%", likePattern("50%"))
	assert.Equal(t, "%a\\_b%", likePattern("a_b"))
	assert.Equal(t, `%c:\\\\d%`, likePattern(`c:\\d`))
}

func TestTaskRepository_UpdateStatusSetsCompletion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := &domain.Task{Description: "Byt filter", Status: domain.TaskStatusPending, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, task))

	done := time.Now().Truncate(time.Second)
	require.NoError(t, repo.UpdateStatus(ctx, task.ID, domain.TaskStatusCompleted, &done, done))
	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(done))

	require.NoError(t, repo.UpdateStatus(ctx, task.ID, domain.TaskStatusPending, nil, done))
	got, err = repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)
}

func TestMaintenancePlanRepository_ListUndatedLast(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenancePlanRepository(db)
	ctx := context.Background()
	prop := createTestProperty(t, db, "Solrosen")

	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(24 * time.Hour)
	for _, p := range []*domain.MaintenancePlan{
		{PropertyID: prop.ID, Title: "undated", Frequency: domain.FrequencyAnnual, Priority: domain.PriorityNormal, EstimatedDurationHours: 1},
		{PropertyID: prop.ID, Title: "later", Frequency: domain.FrequencyMonthly, NextDueDate: &later, Priority: domain.PriorityNormal, EstimatedDurationHours: 1},
		{PropertyID: prop.ID, Title: "sooner", Frequency: domain.FrequencyMonthly, NextDueDate: &sooner, Priority: domain.PriorityNormal, EstimatedDurationHours: 1},
	} {
		require.NoError(t, repo.Create(ctx, p))
	}

	plans, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, []string{"sooner", "later", "undated"}, []string{plans[0].Title, plans[1].Title, plans[2].Title})
}

func TestCaseCommentRepository_ProbeMissingTable(t *testing.T) {
	db := setupTestDB(t, &domain.Case{})
	repo := NewCaseCommentRepository(db)

	ok, err := repo.Probe(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.AutoMigrate(&domain.CaseComment{}))
	ok, err = repo.Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPropertyRepository_SearchAndUnits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := createTestProperty(t, db, "Solrosen")
	createTestProperty(t, db, "Vitsippan")
	require.NoError(t, db.Create(&domain.Unit{PropertyID: a.ID, UnitNumber: "B2", CreatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&domain.Unit{PropertyID: a.ID, UnitNumber: "A1", CreatedAt: time.Now()}).Error)

	found, err := NewPropertyRepository(db).Search(ctx, "sol", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	units, err := NewUnitRepository(db).ListByProperty(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "A1", units[0].UnitNumber)
}

func TestSource_Ping(t *testing.T) {
	db := setupTestDB(t)
	src := NewSource(db, "sqlite")
	assert.Equal(t, "sqlite", src.Name)
	assert.NoError(t, src.Ping(context.Background()))
}
