package v1

import (
	"strconv"
	"strings"

	"go-resume-screener/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid ID format")
	}
	return id, nil
}

// queryInt returns def when the parameter is absent and a 400 when it is not
// an integer.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.BadRequest("Invalid " + key + " parameter")
	}
	return n, nil
}

// splitList parses a comma separated query value.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
