package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/tiercards/cache"
	"github.com/use-agent/tiercards/export"
	"github.com/use-agent/tiercards/models"
)

// Cards returns a handler for GET /api/v1/cards.
//
// Query: category, tier, limit. Cards are returned in snapshot order.
func Cards(cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q models.CardsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, models.CardsResponse{
				Success: false,
				Cards:   []models.CardRecord{},
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		records, err := cc.Records()
		if err != nil {
			respondError(c, err)
			return
		}

		cards := q.Filter(records)
		c.JSON(http.StatusOK, models.CardsResponse{
			Success: true,
			Total:   len(cards),
			Cards:   cards,
		})
	}
}

// Export returns a handler for GET /api/v1/cards/export.
//
// The body is byte-identical to the file written by the export command.
func Export(cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := cc.Records()
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="tm-tierlist-cards.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", export.Bytes(records))
	}
}
