package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staywise/internal/app/commands"
	CalendarApp "staywise/internal/app/handlers/calendar"
	"staywise/internal/app/queries"
)

type CalendarHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h CalendarHandler) Get(c *gin.Context) {
	q := CalendarApp.GetCalendarQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[CalendarApp.GetCalendarQuery, *CalendarApp.GetCalendarResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type blockDatesRequest struct {
	Dates  []string `json:"dates"` // YYYY-MM-DD
	Reason string   `json:"reason"`
}

func (h CalendarHandler) Block(c *gin.Context) {
	host, ok := requireCaller(c)
	if !ok {
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dates := make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
			return
		}
		dates = append(dates, d)
	}
	cmd := CalendarApp.BlockDatesCommand{
		ListingID: c.Param("id"),
		HostID:    host,
		Dates:     dates,
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[CalendarApp.BlockDatesCommand, *CalendarApp.BlockDatesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Unblock(c *gin.Context) {
	host, ok := requireCaller(c)
	if !ok {
		return
	}
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	cmd := CalendarApp.UnblockDateCommand{
		ListingID: c.Param("id"),
		HostID:    host,
		Date:      date,
	}
	result, err := commands.Dispatch[CalendarApp.UnblockDateCommand, *CalendarApp.UnblockDateResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CalendarHTTP = CalendarHandler{}
