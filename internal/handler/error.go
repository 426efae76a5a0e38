package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/library-api/internal/service"
	"github.com/snnyvrz/library-api/internal/validation"
)

type apiError struct {
	status  int
	code    string
	message string
}

// serviceErrors maps domain errors to the response each one produces.
var serviceErrors = []struct {
	target error
	resp   apiError
}{
	{service.ErrBookNotFound, apiError{http.StatusNotFound, "BOOK_NOT_FOUND", "book not found"}},
	{service.ErrBookAlreadyExists, apiError{http.StatusConflict, "BOOK_ALREADY_EXISTS", "book with this id already exists"}},
	{service.ErrDuplicateTitle, apiError{http.StatusConflict, "BOOK_TITLE_TAKEN", "book with this title already exists"}},
}

func lookupServiceError(err error) (apiError, bool) {
	for _, se := range serviceErrors {
		if errors.Is(err, se.target) {
			return se.resp, true
		}
	}
	return apiError{}, false
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, validation.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
