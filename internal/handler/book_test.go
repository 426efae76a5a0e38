package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/snnyvrz/library-api/internal/model"
	"github.com/snnyvrz/library-api/internal/service"
	"github.com/snnyvrz/library-api/internal/testutil"
)

func duneRequest() map[string]any {
	return map[string]any{
		"id":                 1,
		"title":              "Dune",
		"author":             "Herbert",
		"genre":              "Sci-Fi",
		"availabilityStatus": "Available",
	}
}

func TestHome(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, "GET", "/books/", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp WelcomeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Message != "Welcome to the Library API!" {
		t.Errorf("unexpected welcome message %q", resp.Message)
	}
}

func TestListBooks_Empty(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, "GET", "/books", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "[]" {
		t.Errorf("expected empty JSON array, got %s", w.Body.String())
	}
}

func TestListBooks_WithData(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	testutil.SeedBook(t, db, 2, "Emma", "Austen", "Classic", model.StatusCheckedOut)
	testutil.SeedBook(t, db, 1, "Dune", "Herbert", "Sci-Fi", model.StatusAvailable)

	w := doJSON(t, router, "GET", "/books", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp []Book
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if len(resp) != 2 {
		t.Fatalf("expected 2 books, got %d", len(resp))
	}
	if resp[0].ID != 1 || resp[1].ID != 2 {
		t.Errorf("expected books ordered by id, got %+v", resp)
	}
	if resp[1].AvailabilityStatus != model.StatusCheckedOut {
		t.Errorf("expected availabilityStatus %q, got %q", model.StatusCheckedOut, resp[1].AvailabilityStatus)
	}
}

func TestListBooks_InternalError_Returns500(t *testing.T) {
	router := setupBookRouterWithService(&fakeBookService{
		GetAllBooksFn: func(ctx context.Context) ([]model.Book, error) {
			return nil, errors.New("forced list error")
		},
	})

	w := doJSON(t, router, "GET", "/books", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeError(t, w)
	if resp.Code != "BOOK_LIST_FAILED" {
		t.Errorf("expected error code BOOK_LIST_FAILED, got %q", resp.Code)
	}
	if resp.Message != "failed to fetch books" {
		t.Errorf("expected message %q, got %q", "failed to fetch books", resp.Message)
	}
}

func TestGetBookByID_Success(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	book := testutil.SeedBook(t, db, 1, "Dune", "Herbert", "Sci-Fi", model.StatusAvailable)

	w := doJSON(t, router, "GET", "/books/1", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp Book
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp != toBookResponse(book) {
		t.Errorf("expected %+v, got %+v", toBookResponse(book), resp)
	}
}

func TestGetBookByID_NotFound(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, "GET", "/books/42", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d, body=%s", w.Code, w.Body.String())
	}
	if resp := decodeError(t, w); resp.Code != "BOOK_NOT_FOUND" {
		t.Errorf("expected error code BOOK_NOT_FOUND, got %q", resp.Code)
	}
}

func TestGetBookByID_InvalidID(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, "GET", "/books/abc", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", w.Code, w.Body.String())
	}
	if resp := decodeError(t, w); resp.Code != "INVALID_BOOK_ID" {
		t.Errorf("expected error code INVALID_BOOK_ID, got %q", resp.Code)
	}
}

func TestSearchBooks_ByTitle(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	testutil.SeedBook(t, db, 1, "The Great Gatsby", "Fitzgerald", "Classic", model.StatusAvailable)
	testutil.SeedBook(t, db, 2, "Dune", "Herbert", "Sci-Fi", model.StatusAvailable)

	for _, q := range []string{"gatsby", "GREAT", "the"} {
		w := doJSON(t, router, "GET", "/books/search?title="+q, nil)

		if w.Code != http.StatusOK {
			t.Fatalf("search %q: expected status 200, got %d", q, w.Code)
		}

		var resp []Book
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if len(resp) != 1 || resp[0].ID != 1 {
			t.Errorf("search %q: expected only The Great Gatsby, got %+v", q, resp)
		}
	}
}

func TestSearchBooks_NoMatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	testutil.SeedBook(t, db, 1, "Dune", "Herbert", "Sci-Fi", model.StatusAvailable)

	w := doJSON(t, router, "GET", "/books/search?title=zzz", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "[]" {
		t.Errorf("expected empty array, got %s", w.Body.String())
	}
}

func TestSearchBooks_ByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	testutil.SeedBook(t, db, 7, "Dune", "Herbert", "Sci-Fi", model.StatusAvailable)

	w := doJSON(t, router, "GET", "/books/search?id=7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp []Book
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != 7 {
		t.Errorf("expected one-element list with book 7, got %+v", resp)
	}

	if w := doJSON(t, router, "GET", "/books/search?id=8", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown id, got %d", w.Code)
	}
	if w := doJSON(t, router, "GET", "/books/search?id=x", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid id, got %d", w.Code)
	}
}

func TestSearchBooks_TitleWinsOverID(t *testing.T) {
	var searched string
	router := setupBookRouterWithService(&fakeBookService{
		SearchBooksByTitleFn: func(ctx context.Context, title string) ([]model.Book, error) {
			searched = title
			return []model.Book{}, nil
		},
		GetBookByIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			t.Fatalf("id lookup should not run when title is present")
			return nil, nil
		},
	})

	w := doJSON(t, router, "GET", "/books/search?title=dune&id=1", nil)

	if w.Code != http.StatusOK || searched != "dune" {
		t.Fatalf("expected title search for dune, got status=%d searched=%q", w.Code, searched)
	}
}

func TestSearchBooks_MissingParams(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, "GET", "/books/search", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "MISSING_SEARCH_PARAM" {
		t.Errorf("expected error code MISSING_SEARCH_PARAM, got %q", resp.Code)
	}
}

func TestSearchBooks_InternalError_Returns500(t *testing.T) {
	router := setupBookRouterWithService(&fakeBookService{
		SearchBooksByTitleFn: func(ctx context.Context, title string) ([]model.Book, error) {
			return nil, errors.New("forced search error")
		},
	})

	w := doJSON(t, router, "GET", "/books/search?title=a", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "BOOK_SEARCH_FAILED" {
		t.Errorf("expected error code BOOK_SEARCH_FAILED, got %q", resp.Code)
	}
}

func TestCreateBook_Success(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	w := doJSON(t, router, "POST", "/books", duneRequest())

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp Book
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	want := Book{ID: 1, Title: "Dune", Author: "Herbert", Genre: "Sci-Fi", AvailabilityStatus: "Available"}
	if resp != want {
		t.Errorf("expected body to echo input %+v, got %+v", want, resp)
	}

	if w := doJSON(t, router, "GET", "/books/1", nil); w.Code != http.StatusOK {
		t.Errorf("expected created book to be retrievable, got %d", w.Code)
	}
}

func TestCreateBook_DuplicateID_Returns409(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	if w := doJSON(t, router, "POST", "/books", duneRequest()); w.Code != http.StatusCreated {
		t.Fatalf("expected first create to succeed, got %d", w.Code)
	}

	w := doJSON(t, router, "POST", "/books", duneRequest())

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d, body=%s", w.Code, w.Body.String())
	}
	if resp := decodeError(t, w); resp.Code != "BOOK_ALREADY_EXISTS" {
		t.Errorf("expected error code BOOK_ALREADY_EXISTS, got %q", resp.Code)
	}
}

func TestCreateBook_DuplicateTitle_Returns409(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	if w := doJSON(t, router, "POST", "/books", duneRequest()); w.Code != http.StatusCreated {
		t.Fatalf("expected first create to succeed, got %d", w.Code)
	}

	body := duneRequest()
	body["id"] = 2
	w := doJSON(t, router, "POST", "/books", body)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d, body=%s", w.Code, w.Body.String())
	}
	if resp := decodeError(t, w); resp.Code != "BOOK_TITLE_TAKEN" {
		t.Errorf("expected error code BOOK_TITLE_TAKEN, got %q", resp.Code)
	}
}

func TestCreateBook_InvalidID_Returns400(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	tests := []struct {
		name string
		id   any
	}{
		{"missing", nil},
		{"zero", 0},
		{"negative", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := duneRequest()
			if tt.id == nil {
				delete(body, "id")
			} else {
				body["id"] = tt.id
			}

			w := doJSON(t, router, "POST", "/books", body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d, body=%s", w.Code, w.Body.String())
			}

			resp := decodeError(t, w)
			if len(resp.Errors) != 1 || resp.Errors[0].Field != "id" {
				t.Errorf("expected a single id field error, got %+v", resp.Errors)
			}
		})
	}
}

func TestCreateBook_MissingFields_Returns400(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	for _, field := range []string{"title", "author", "genre", "availabilityStatus"} {
		t.Run(field, func(t *testing.T) {
			body := duneRequest()
			delete(body, field)

			w := doJSON(t, router, "POST", "/books", body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d, body=%s", w.Code, w.Body.String())
			}
			resp := decodeError(t, w)
			if len(resp.Errors) != 1 || resp.Errors[0].Field != field || resp.Errors[0].Rule != "required" {
				t.Errorf("expected required error on %s, got %+v", field, resp.Errors)
			}
		})
	}
}

func TestCreateBook_EmptyAvailabilityStatusAccepted(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	body := duneRequest()
	body["availabilityStatus"] = ""

	w := doJSON(t, router, "POST", "/books", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestCreateBook_MalformedJSON_Returns400(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, "POST", "/books", `{"id": "one"`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "INVALID_REQUEST_BODY" {
		t.Errorf("expected error code INVALID_REQUEST_BODY, got %q", resp.Code)
	}
}

func TestCreateBook_InternalError_Returns500(t *testing.T) {
	router := setupBookRouterWithService(&fakeBookService{
		AddBookFn: func(ctx context.Context, book model.Book) (*model.Book, error) {
			return nil, errors.New("forced create error")
		},
	})

	w := doJSON(t, router, "POST", "/books", duneRequest())

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d, body=%s", w.Code, w.Body.String())
	}

	resp := decodeError(t, w)
	if resp.Code != "BOOK_CREATE_FAILED" {
		t.Errorf("expected error code BOOK_CREATE_FAILED, got %q", resp.Code)
	}
	if resp.Message != "failed to create book" {
		t.Errorf("expected message %q, got %q", "failed to create book", resp.Message)
	}
}

func TestUpdateBook_OnlyGenre(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	testutil.SeedBook(t, db, 1, "Dune", "Herbert", "Sci-Fi", model.StatusAvailable)

	w := doJSON(t, router, "PUT", "/books/1", map[string]any{"genre": "Science Fiction"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp Book
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	want := Book{ID: 1, Title: "Dune", Author: "Herbert", Genre: "Science Fiction", AvailabilityStatus: model.StatusAvailable}
	if resp != want {
		t.Errorf("expected %+v, got %+v", want, resp)
	}
}

func TestUpdateBook_PassesPatchThrough(t *testing.T) {
	var got service.BookPatch
	router := setupBookRouterWithService(&fakeBookService{
		UpdateBookFn: func(ctx context.Context, id int64, patch service.BookPatch) (*model.Book, error) {
			got = patch
			return &model.Book{ID: id}, nil
		},
	})

	w := doJSON(t, router, "PUT", "/books/3", `{"title":"","availabilityStatus":""}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got.Title == nil || *got.Title != "" {
		t.Errorf("expected empty title to be passed as supplied, got %v", got.Title)
	}
	if got.AvailabilityStatus == nil || *got.AvailabilityStatus != "" {
		t.Errorf("expected empty availabilityStatus to be passed as supplied, got %v", got.AvailabilityStatus)
	}
	if got.Author != nil || got.Genre != nil {
		t.Errorf("expected omitted fields to stay nil, got author=%v genre=%v", got.Author, got.Genre)
	}
}

func TestUpdateBook_NotFound(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	w := doJSON(t, router, "PUT", "/books/9", map[string]any{"title": "X"})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d, body=%s", w.Code, w.Body.String())
	}

	if w := doJSON(t, router, "GET", "/books/9", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected no book to be created by update, got %d", w.Code)
	}
}

func TestUpdateBook_DuplicateTitle_Returns409(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	testutil.SeedBook(t, db, 1, "Dune", "Herbert", "Sci-Fi", model.StatusAvailable)
	testutil.SeedBook(t, db, 2, "Emma", "Austen", "Classic", model.StatusAvailable)

	w := doJSON(t, router, "PUT", "/books/2", map[string]any{"title": "Dune"})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateBook_BadInput_Returns400(t *testing.T) {
	router := setupTestRouter(testutil.NewTestDB(t))

	if w := doJSON(t, router, "PUT", "/books/abc", map[string]any{"title": "X"}); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid id, got %d", w.Code)
	}
	if w := doJSON(t, router, "PUT", "/books/1", `not json`); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for malformed body, got %d", w.Code)
	}
}

func TestDeleteBook(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := setupTestRouter(db)

	testutil.SeedBook(t, db, 1, "Dune", "Herbert", "Sci-Fi", model.StatusAvailable)

	w := doJSON(t, router, "DELETE", "/books/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d, body=%s", w.Code, w.Body.String())
	}

	if w := doJSON(t, router, "GET", "/books/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}

	if w := doJSON(t, router, "DELETE", "/books/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting a missing book, got %d", w.Code)
	}
}

func TestDeleteBook_InternalError_Returns500(t *testing.T) {
	router := setupBookRouterWithService(&fakeBookService{
		DeleteBookFn: func(ctx context.Context, id int64) error {
			return errors.New("forced delete error")
		},
	})

	w := doJSON(t, router, "DELETE", "/books/1", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "BOOK_DELETE_FAILED" {
		t.Errorf("expected error code BOOK_DELETE_FAILED, got %q", resp.Code)
	}
}

func TestHandlers_StoreFailure_Returns500(t *testing.T) {
	router := setupTestRouter(testutil.NewErrorDB(t))

	for _, path := range []string{"/books", "/books/1", "/books/search?title=a"} {
		if w := doJSON(t, router, "GET", path, nil); w.Code != http.StatusInternalServerError {
			t.Errorf("GET %s: expected status 500 without a books table, got %d", path, w.Code)
		}
	}
}
