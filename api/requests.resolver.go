package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
)

// requests lists a holder's full withdrawal history. JSON by default;
// ?format=csv returns a report suitable for download.
func (h ApiHandler) requests(c *gin.Context) {
	holder, err := parseID(c.Param("holder"))
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	history := h.Queue.RequestsOf(holder)

	if c.Query("format") == "csv" {
		out, err := gocsv.MarshalString(&history)
		if err != nil {
			returnErrorJson(fmt.Errorf("failed to render csv: %w", err), c)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=withdrawal_requests.csv")
		c.Data(200, "text/csv", []byte(out))
		return
	}

	c.JSON(200, gin.H{"requests": history})
}
