package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	defaultAuditPageSize = 25
	maxAuditPageSize     = 100
)

type AuditController struct {
	auditReader AuditReader
}

func NewAuditController(auditReader AuditReader) *AuditController {
	return &AuditController{
		auditReader: auditReader,
	}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?entity_type=book&page=1&limit=25
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", defaultAuditPageSize)
	if limit > maxAuditPageSize {
		limit = defaultAuditPageSize
	}

	entityType := c.Query("entity_type")
	offset := (page - 1) * limit

	events, total, err := ac.auditReader.GetEvents(c.Request.Context(), entityType, limit, offset)
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}
