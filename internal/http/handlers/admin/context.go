package admin

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// AdminSubjectContextKey 鉴权中间件写入的管理员标识
const AdminSubjectContextKey = "admin_subject"

func adminSubject(c *gin.Context) string {
	if v, ok := c.Get(AdminSubjectContextKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
