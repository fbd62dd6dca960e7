package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	SearchApp "staywise/internal/app/handlers/search"
	"staywise/internal/app/queries"
)

type SearchHandler struct {
	Queries queries.Bus
}

// Rank serves personalized search. Anonymous callers still get results,
// scored by the popular-choice fallback.
func (h SearchHandler) Rank(c *gin.Context) {
	q := SearchApp.RankListingsQuery{UserID: callerID(c)}
	result, err := queries.Ask[SearchApp.RankListingsQuery, *SearchApp.RankListingsResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ SearchHTTP = SearchHandler{}
