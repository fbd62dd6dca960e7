package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staywise/internal/app/commands"
	PricingApp "staywise/internal/app/handlers/pricing"
	"staywise/internal/app/queries"
)

type PricingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h PricingHandler) Suggestion(c *gin.Context) {
	if _, ok := requireCaller(c); !ok {
		return
	}
	q := PricingApp.SuggestPriceQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[PricingApp.SuggestPriceQuery, *PricingApp.SuggestPriceResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type applyPriceRequest struct {
	Price  int64  `json:"price"`
	Reason string `json:"reason"`
}

func (h PricingHandler) Apply(c *gin.Context) {
	host, ok := requireCaller(c)
	if !ok {
		return
	}
	var req applyPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := PricingApp.ApplyPriceCommand{
		ListingID: c.Param("id"),
		HostID:    host,
		Price:     req.Price,
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[PricingApp.ApplyPriceCommand, *PricingApp.ApplyPriceResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
