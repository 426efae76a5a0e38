package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/library-api/internal/model"
	"github.com/snnyvrz/library-api/internal/repository"
	"github.com/snnyvrz/library-api/internal/service"
	"github.com/snnyvrz/library-api/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeBookService struct {
	GetAllBooksFn        func(ctx context.Context) ([]model.Book, error)
	GetBookByIDFn        func(ctx context.Context, id int64) (*model.Book, error)
	SearchBooksByTitleFn func(ctx context.Context, title string) ([]model.Book, error)
	AddBookFn            func(ctx context.Context, book model.Book) (*model.Book, error)
	UpdateBookFn         func(ctx context.Context, id int64, patch service.BookPatch) (*model.Book, error)
	DeleteBookFn         func(ctx context.Context, id int64) error
}

func (f *fakeBookService) GetAllBooks(ctx context.Context) ([]model.Book, error) {
	if f.GetAllBooksFn != nil {
		return f.GetAllBooksFn(ctx)
	}
	return nil, nil
}

func (f *fakeBookService) GetBookByID(ctx context.Context, id int64) (*model.Book, error) {
	if f.GetBookByIDFn != nil {
		return f.GetBookByIDFn(ctx, id)
	}
	return nil, service.ErrBookNotFound
}

func (f *fakeBookService) SearchBooksByTitle(ctx context.Context, title string) ([]model.Book, error) {
	if f.SearchBooksByTitleFn != nil {
		return f.SearchBooksByTitleFn(ctx, title)
	}
	return nil, nil
}

func (f *fakeBookService) AddBook(ctx context.Context, book model.Book) (*model.Book, error) {
	if f.AddBookFn != nil {
		return f.AddBookFn(ctx, book)
	}
	return &book, nil
}

func (f *fakeBookService) UpdateBook(ctx context.Context, id int64, patch service.BookPatch) (*model.Book, error) {
	if f.UpdateBookFn != nil {
		return f.UpdateBookFn(ctx, id, patch)
	}
	return nil, service.ErrBookNotFound
}

func (f *fakeBookService) DeleteBook(ctx context.Context, id int64) error {
	if f.DeleteBookFn != nil {
		return f.DeleteBookFn(ctx, id)
	}
	return nil
}

func setupBookRouterWithService(svc BookService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.UseJSONFieldNames()

	r := gin.New()

	h := NewBookHandler(svc, zap.NewNop())
	h.RegisterRoutes(r.Group(""))

	return r
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	repo := repository.NewGormBookRepository(db)
	return setupBookRouterWithService(service.NewBookService(repo, zap.NewNop()))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) validation.ErrorResponse {
	t.Helper()

	var resp validation.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v, body=%s", err, w.Body.String())
	}
	return resp
}
