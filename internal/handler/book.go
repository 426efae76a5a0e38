package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/library-api/internal/middleware"
	"github.com/snnyvrz/library-api/internal/model"
	"github.com/snnyvrz/library-api/internal/service"
	"github.com/snnyvrz/library-api/internal/validation"
	"go.uber.org/zap"
)

const welcomeMessage = "Welcome to the Library API!"

type BookService interface {
	GetAllBooks(ctx context.Context) ([]model.Book, error)
	GetBookByID(ctx context.Context, id int64) (*model.Book, error)
	SearchBooksByTitle(ctx context.Context, title string) ([]model.Book, error)
	AddBook(ctx context.Context, book model.Book) (*model.Book, error)
	UpdateBook(ctx context.Context, id int64, patch service.BookPatch) (*model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

type BookHandler struct {
	svc    BookService
	logger *zap.Logger
}

func NewBookHandler(svc BookService, logger *zap.Logger) *BookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookHandler{svc: svc, logger: logger}
}

func (h *BookHandler) RegisterRoutes(r *gin.RouterGroup) {
	books := r.Group("/books")
	{
		books.GET("/", h.Home)
		books.GET("", h.ListBooks)
		books.GET("/search", h.SearchBooks)
		books.GET("/:id", h.GetBookByID)
		books.POST("", h.CreateBook)
		books.PUT("/:id", h.UpdateBook)
		books.DELETE("/:id", h.DeleteBook)
	}
}

// Home godoc
// @Summary      Welcome message
// @Tags         books
// @Produce      json
// @Success      200  {object}  WelcomeResponse
// @Router       /books/ [get]
func (h *BookHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, WelcomeResponse{Message: welcomeMessage})
}

// ListBooks godoc
// @Summary      List books
// @Description  Get all books ordered by id
// @Tags         books
// @Produce      json
// @Success      200  {array}   Book
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.svc.GetAllBooks(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err, "BOOK_LIST_FAILED", "failed to fetch books")
		return
	}

	c.JSON(http.StatusOK, toBookListResponse(books))
}

// GetBookByID godoc
// @Summary      Get a book by ID
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  Book
// @Failure      400  {object}  validation.ErrorResponse   "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse   "Book not found"
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBookByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	book, err := h.svc.GetBookByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err, "BOOK_FETCH_FAILED", "failed to fetch book")
		return
	}

	c.JSON(http.StatusOK, toBookResponse(*book))
}

// SearchBooks godoc
// @Summary      Search books
// @Description  Case-insensitive title substring search. When only id is given, returns that book as a one-element list.
// @Tags         books
// @Produce      json
// @Param        title  query     string  false  "Title substring"
// @Param        id     query     int     false  "Book ID"
// @Success      200    {array}   Book
// @Failure      400    {object}  validation.ErrorResponse   "Missing or invalid parameters"
// @Failure      404    {object}  validation.ErrorResponse   "Book not found"
// @Failure      500    {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	ctx := c.Request.Context()

	if title, ok := c.GetQuery("title"); ok {
		books, err := h.svc.SearchBooksByTitle(ctx, title)
		if err != nil {
			h.writeServiceError(c, err, "BOOK_SEARCH_FAILED", "failed to search books")
			return
		}
		c.JSON(http.StatusOK, toBookListResponse(books))
		return
	}

	idParam, ok := c.GetQuery("id")
	if !ok {
		writeError(c, http.StatusBadRequest,
			"MISSING_SEARCH_PARAM",
			"either title or id must be provided",
		)
		return
	}

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_BOOK_ID",
			"book id must be an integer",
		)
		return
	}

	book, err := h.svc.GetBookByID(ctx, id)
	if err != nil {
		h.writeServiceError(c, err, "BOOK_SEARCH_FAILED", "failed to search books")
		return
	}

	c.JSON(http.StatusOK, []Book{toBookResponse(*book)})
}

// CreateBook godoc
// @Summary      Create a book
// @Description  Create a book with a caller-chosen positive id
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateBookRequest          true  "Book to create"
// @Success      201      {object}  Book
// @Failure      400      {object}  validation.ErrorResponse   "Validation error"
// @Failure      409      {object}  validation.ErrorResponse   "Duplicate id or title"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	book := model.Book{
		ID:                 *req.ID,
		Title:              req.Title,
		Author:             req.Author,
		Genre:              req.Genre,
		AvailabilityStatus: *req.AvailabilityStatus,
	}

	created, err := h.svc.AddBook(c.Request.Context(), book)
	if err != nil {
		h.writeServiceError(c, err, "BOOK_CREATE_FAILED", "failed to create book")
		return
	}

	c.JSON(http.StatusCreated, toBookResponse(*created))
}

// UpdateBook godoc
// @Summary      Update a book
// @Description  Partially update a book. Empty title, author or genre values are ignored.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id       path      int                 true  "Book ID"
// @Param        payload  body      UpdateBookRequest   true  "Fields to update"
// @Success      200      {object}  Book
// @Failure      400      {object}  validation.ErrorResponse   "Invalid ID or payload"
// @Failure      404      {object}  validation.ErrorResponse   "Book not found"
// @Failure      409      {object}  validation.ErrorResponse   "Duplicate title"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateBookRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	patch := service.BookPatch{
		Title:              req.Title,
		Author:             req.Author,
		Genre:              req.Genre,
		AvailabilityStatus: req.AvailabilityStatus,
	}

	updated, err := h.svc.UpdateBook(c.Request.Context(), id, patch)
	if err != nil {
		h.writeServiceError(c, err, "BOOK_UPDATE_FAILED", "failed to update book")
		return
	}

	c.JSON(http.StatusOK, toBookResponse(*updated))
}

// DeleteBook godoc
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      204  {string}  string  "No content"
// @Failure      400  {object}  validation.ErrorResponse   "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse   "Book not found"
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteBook(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err, "BOOK_DELETE_FAILED", "failed to delete book")
		return
	}

	c.Status(http.StatusNoContent)
}

// writeServiceError writes the mapped response for known domain errors.
// Anything else is logged and reported as a 500 with the given code.
func (h *BookHandler) writeServiceError(c *gin.Context, err error, code, message string) {
	if resp, ok := lookupServiceError(err); ok {
		writeError(c, resp.status, resp.code, resp.message)
		return
	}

	h.logger.Error(message,
		zap.Error(err),
		zap.String("request_id", middleware.RequestIDFrom(c)),
		zap.String("route", c.FullPath()),
	)
	writeError(c, http.StatusInternalServerError, code, message)
}
