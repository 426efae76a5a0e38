package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a numeric book id from the path. It writes a 400 and
// returns false when the value is not an integer.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_BOOK_ID",
			"book id must be an integer",
		)
		return 0, false
	}
	return id, true
}
