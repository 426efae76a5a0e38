package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/snnyvrz/library-api/internal/model"
	"github.com/snnyvrz/library-api/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBookAlreadyExists = errors.New("book with this id already exists")
	ErrDuplicateTitle    = errors.New("book with this title already exists")
)

// BookPatch carries the fields of a partial update. A nil field was not
// supplied by the caller.
type BookPatch struct {
	Title              *string
	Author             *string
	Genre              *string
	AvailabilityStatus *string
}

type BookService struct {
	repo   repository.BookRepository
	logger *zap.Logger
}

func NewBookService(repo repository.BookRepository, logger *zap.Logger) *BookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{repo: repo, logger: logger}
}

func (s *BookService) GetAllBooks(ctx context.Context) ([]model.Book, error) {
	books, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *BookService) GetBookByID(ctx context.Context, id int64) (*model.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return book, nil
}

func (s *BookService) SearchBooksByTitle(ctx context.Context, title string) ([]model.Book, error) {
	books, err := s.repo.FindByTitleContainingIgnoreCase(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("search books by title: %w", err)
	}
	return books, nil
}

// AddBook stores a new book. The id must not be in use; a title already held
// by another book is reported as ErrDuplicateTitle.
func (s *BookService) AddBook(ctx context.Context, book model.Book) (*model.Book, error) {
	var saved *model.Book

	err := s.repo.Transaction(ctx, func(tx repository.BookRepository) error {
		exists, err := tx.ExistsByID(ctx, book.ID)
		if err != nil {
			return fmt.Errorf("check book %d: %w", book.ID, err)
		}
		if exists {
			return ErrBookAlreadyExists
		}

		saved, err = tx.Save(ctx, &book)
		if err != nil {
			return writeError("create book", book.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("book created", zap.Int64("book_id", saved.ID))
	return saved, nil
}

// UpdateBook merges patch into the stored book. Title, author and genre are
// replaced only by non-empty values; availability status is replaced by any
// supplied value, including the empty string.
func (s *BookService) UpdateBook(ctx context.Context, id int64, patch BookPatch) (*model.Book, error) {
	var saved *model.Book

	err := s.repo.Transaction(ctx, func(tx repository.BookRepository) error {
		existing, err := tx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("get book %d: %w", id, err)
		}

		applyPatch(existing, patch)

		saved, err = tx.Save(ctx, existing)
		if err != nil {
			return writeError("update book", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("book updated", zap.Int64("book_id", id))
	return saved, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	err := s.repo.Transaction(ctx, func(tx repository.BookRepository) error {
		exists, err := tx.ExistsByID(ctx, id)
		if err != nil {
			return fmt.Errorf("check book %d: %w", id, err)
		}
		if !exists {
			return ErrBookNotFound
		}

		if err := tx.DeleteByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("delete book %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("book deleted", zap.Int64("book_id", id))
	return nil
}

func applyPatch(book *model.Book, patch BookPatch) {
	if patch.Title != nil && *patch.Title != "" {
		book.Title = *patch.Title
	}
	if patch.Author != nil && *patch.Author != "" {
		book.Author = *patch.Author
	}
	if patch.Genre != nil && *patch.Genre != "" {
		book.Genre = *patch.Genre
	}
	if patch.AvailabilityStatus != nil {
		book.AvailabilityStatus = *patch.AvailabilityStatus
	}
}

// writeError maps store failures on save. The id is checked beforehand, so a
// unique violation here comes from the title index.
func writeError(op string, id int64, err error) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return ErrDuplicateTitle
	}
	return fmt.Errorf("%s %d: %w", op, id, err)
}
