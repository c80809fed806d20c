package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"snowclear-api/money"
)

// parseID reads the :id path parameter. 0 falls through to a not-found
// at the lookup.
func parseID(c *gin.Context) uint {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id)
}

func centsOf(dollars float64) (int64, error) {
	return money.ToCents(dollars)
}
