package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/services"
	"github.com/yeremiapane/queueapp/utils"
)

var csvHeader = []string{
	"Queue Number", "Customer Name", "Phone", "Guests",
	"Join Date", "Join Time", "Seat Date", "Seat Time",
	"Wait Duration (minutes)", "Table Number", "Status",
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

type AnalyticsController struct {
	Analytics *services.AnalyticsService
	Queue     *services.QueueService
	Clock     services.Clock
}

func NewAnalyticsController(analytics *services.AnalyticsService, queue *services.QueueService, clock services.Clock) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics, Queue: queue, Clock: clock}
}

// parseFilter reads date_from, date_to, time_slots (comma separated) and search.
func parseFilter(c *gin.Context) (services.Filter, error) {
	f := services.Filter{
		DateFrom: strings.TrimSpace(c.Query("date_from")),
		DateTo:   strings.TrimSpace(c.Query("date_to")),
		Search:   c.Query("search"),
	}
	for _, d := range []string{f.DateFrom, f.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(services.DateLayout, d); err != nil {
			return f, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	if raw := c.Query("time_slots"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			slot, err := services.ParseTimeSlot(name)
			if err != nil {
				return f, err
			}
			f.TimeSlots = append(f.TimeSlots, slot)
		}
	}
	return f, nil
}

func (ac *AnalyticsController) Report(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	report, err := ac.Analytics.Report(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Analytics"
	if report.Partial {
		message = "Analytics (archive partially unavailable)"
	}
	utils.RespondJSON(c, http.StatusOK, message, report)
}

// Export streams the filtered history as CSV.
func (ac *AnalyticsController) Export(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurantID := c.Param("id")
	r, err := ac.Queue.Restaurant(c.Request.Context(), restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	rows, _, err := ac.Analytics.Export(c.Request.Context(), restaurantID, f)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("QueueApp-%s-%s.csv", unsafeFilenameChars.ReplaceAllString(r.Name, "-"), services.Today(ac.Clock))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.Write(csvHeader); err != nil {
		utils.ErrorLogger.Printf("CSV export failed: %v", err)
		return
	}
	for _, row := range rows {
		if err := w.Write(csvRecord(row)); err != nil {
			utils.ErrorLogger.Printf("CSV export failed: %v", err)
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		utils.ErrorLogger.Printf("CSV export failed: %v", err)
		return
	}

	utils.InfoLogger.Printf("CSV exported for restaurant %s: %d records", restaurantID, len(rows))
}

func csvRecord(row services.ExportRow) []string {
	seatDate, seatTime := "", ""
	if row.AllocatedAt != nil {
		seatDate = row.AllocatedAt.Format(services.DateLayout)
		seatTime = row.AllocatedAt.Format("15:04:05")
	}
	return []string{
		row.QueueNumber,
		row.CustomerName,
		row.Phone,
		strconv.Itoa(row.Guests),
		row.JoinedAt.Format(services.DateLayout),
		row.JoinedAt.Format("15:04:05"),
		seatDate,
		seatTime,
		row.WaitDisplay(),
		row.TableNo,
		row.Status,
	}
}
