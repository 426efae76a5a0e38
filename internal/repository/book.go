package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/snnyvrz/library-api/internal/model"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

const pgUniqueViolation = "23505"

type BookRepository interface {
	FindAll(ctx context.Context) ([]model.Book, error)
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	FindByTitleContainingIgnoreCase(ctx context.Context, title string) ([]model.Book, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, book *model.Book) (*model.Book, error)
	DeleteByID(ctx context.Context, id int64) error
	// Transaction runs fn against a repository bound to a single database
	// transaction. The transaction commits only if fn returns nil.
	Transaction(ctx context.Context, fn func(repo BookRepository) error) error
}

// bookRow is the table mapping for model.Book.
type bookRow struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement:false"`
	Title              string `gorm:"not null;uniqueIndex"`
	Author             string `gorm:"not null"`
	Genre              string `gorm:"not null"`
	AvailabilityStatus string `gorm:"not null"`
}

func (bookRow) TableName() string {
	return "books"
}

func toRow(b *model.Book) bookRow {
	return bookRow{
		ID:                 b.ID,
		Title:              b.Title,
		Author:             b.Author,
		Genre:              b.Genre,
		AvailabilityStatus: b.AvailabilityStatus,
	}
}

func (r bookRow) toModel() model.Book {
	return model.Book{
		ID:                 r.ID,
		Title:              r.Title,
		Author:             r.Author,
		Genre:              r.Genre,
		AvailabilityStatus: r.AvailabilityStatus,
	}
}

func toModels(rows []bookRow) []model.Book {
	books := make([]model.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.toModel())
	}
	return books
}

// AutoMigrate creates or updates the books table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&bookRow{})
}

type GormBookRepository struct {
	db *gorm.DB
}

func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

func (r *GormBookRepository) FindAll(ctx context.Context) ([]model.Book, error) {
	var rows []bookRow
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {

		return nil, translateError(err)
	}
	return toModels(rows), nil
}

func (r *GormBookRepository) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	var row bookRow
	if err := r.db.WithContext(ctx).
		First(&row, "id = ?", id).Error; err != nil {

		return nil, translateError(err)
	}
	book := row.toModel()
	return &book, nil
}

func (r *GormBookRepository) FindByTitleContainingIgnoreCase(ctx context.Context, title string) ([]model.Book, error) {
	pattern := "%" + strings.ToLower(escapeLike(title)) + "%"

	var rows []bookRow
	if err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? ESCAPE '\\'", pattern).
		Order("id ASC").
		Find(&rows).Error; err != nil {

		return nil, translateError(err)
	}
	return toModels(rows), nil
}

func (r *GormBookRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&bookRow{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {

		return false, translateError(err)
	}
	return count > 0, nil
}

// Save inserts the book when no row carries its id and overwrites every
// column otherwise.
func (r *GormBookRepository) Save(ctx context.Context, book *model.Book) (*model.Book, error) {
	row := toRow(book)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, translateError(err)
	}
	saved := row.toModel()
	return &saved, nil
}

func (r *GormBookRepository) DeleteByID(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&bookRow{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormBookRepository) Transaction(ctx context.Context, fn func(repo BookRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBookRepository{db: tx})
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, pgErr.ConstraintName)
	}

	// sqlite reports constraint failures as plain errors when the dialector
	// does not translate them
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}

	return err
}
