package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// queryInt reads an integer query parameter clamped to [min, max].
func queryInt(c *gin.Context, key string, def, min, max int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
