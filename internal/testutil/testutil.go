package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/snnyvrz/library-api/internal/model"
	"github.com/snnyvrz/library-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB returns a migrated in-memory sqlite database private to the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:testdb_" + uuid.New().String() + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// NewErrorDB returns a database with no tables, so every query fails.
func NewErrorDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:errdb_" + uuid.New().String() + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to error test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func SeedBook(t *testing.T, db *gorm.DB, id int64, title, author, genre, status string) model.Book {
	t.Helper()

	repo := repository.NewGormBookRepository(db)
	saved, err := repo.Save(context.Background(), &model.Book{
		ID:                 id,
		Title:              title,
		Author:             author,
		Genre:              genre,
		AvailabilityStatus: status,
	})
	if err != nil {
		t.Fatalf("failed to seed book %q: %v", title, err)
	}

	return *saved
}

func StrPtr(s string) *string {
	return &s
}

func Int64Ptr(n int64) *int64 {
	return &n
}
