package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/tiercards/cache"
	"github.com/use-agent/tiercards/models"
	"github.com/use-agent/tiercards/report"
)

// Stats returns a handler for GET /api/v1/stats.
//
// Query: top (default defaultTop). Same numbers as the stats command.
func Stats(cc *cache.Cache, defaultTop int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q models.StatsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, models.StatsResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		q.Defaults(defaultTop)

		records, err := cc.Records()
		if err != nil {
			respondError(c, err)
			return
		}

		s := report.Summarize(records, q.Top)
		top := s.Top
		if top == nil {
			top = []models.CardRecord{}
		}
		byCategory := s.ByCategory
		if byCategory == nil {
			byCategory = []models.CategoryCount{}
		}
		c.JSON(http.StatusOK, models.StatsResponse{
			Success:    true,
			Total:      s.Total,
			ByTier:     s.TierMap(),
			ByCategory: byCategory,
			Top:        top,
		})
	}
}
