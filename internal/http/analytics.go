package http

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/titangym/gymdesk/internal/database/analytics"
	"github.com/titangym/gymdesk/internal/entities"
)

// AnalyticsStore covers the read-side reporting queries.
type AnalyticsStore interface {
	Stats(p analytics.Period, today string) (*analytics.Stats, error)
	TopClients(limit int, p analytics.Period) ([]analytics.TopClient, error)
	TrainerStats(p analytics.Period) ([]analytics.TrainerStat, error)
	VisitsChart(days int, now time.Time) ([]analytics.ChartPoint, error)
	PeakHours(p analytics.Period) ([]analytics.HourCount, error)
	DayVisits(date string) ([]analytics.VisitSpan, error)
	OpenVisitCount(date string) (int64, error)
	CurrentVisitors(now time.Time) ([]analytics.CurrentVisitor, error)
	EarningsTotals(f analytics.EarningsFilter) (*analytics.EarningsTotals, error)
	EarningsByType(f analytics.EarningsFilter) ([]analytics.EarningsByType, error)
	EarningsByDay(f analytics.EarningsFilter) ([]analytics.EarningsByDay, error)
	EarningsTopClients(f analytics.EarningsFilter, limit int) ([]analytics.EarningsTopClient, error)
}

type AnalyticsController struct {
	store AnalyticsStore
	now   func() time.Time
}

func NewAnalyticsController(store AnalyticsStore) *AnalyticsController {
	return &AnalyticsController{
		store: store,
		now:   time.Now,
	}
}

func (controller *AnalyticsController) period(c *gin.Context, fallback string) analytics.Period {
	name := c.DefaultQuery("period", fallback)
	return analytics.PeriodRange(name, controller.now())
}

// Stats handles GET /api/analytics/stats
func (controller *AnalyticsController) Stats(c *gin.Context) {
	p := controller.period(c, "month")
	today := controller.now().Format(entities.DateLayout)

	stats, err := controller.store.Stats(p, today)
	if err != nil {
		respondInternalError(c, err, "Get stats error", "Ошибка получения статистики")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TopClients handles GET /api/analytics/top-clients
func (controller *AnalyticsController) TopClients(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 10)
	p := controller.period(c, "month")

	rows, err := controller.store.TopClients(limit, p)
	if err != nil {
		respondInternalError(c, err, "Get top clients error", "Ошибка получения топа клиентов")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// TrainerStats handles GET /api/analytics/trainer-stats
func (controller *AnalyticsController) TrainerStats(c *gin.Context) {
	p := controller.period(c, "month")

	rows, err := controller.store.TrainerStats(p)
	if err != nil {
		respondInternalError(c, err, "Get trainer stats error", "Ошибка получения статистики тренеров")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// VisitsChart handles GET /api/analytics/visits-chart
func (controller *AnalyticsController) VisitsChart(c *gin.Context) {
	days := parseQueryInt(c, "days", 30)

	rows, err := controller.store.VisitsChart(days, controller.now())
	if err != nil {
		respondInternalError(c, err, "Get visits chart error", "Ошибка получения графика посещений")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// PeakHours handles GET /api/analytics/peak-hours
func (controller *AnalyticsController) PeakHours(c *gin.Context) {
	p := controller.period(c, "month")

	rows, err := controller.store.PeakHours(p)
	if err != nil {
		respondInternalError(c, err, "Get peak hours error", "Ошибка получения статистики по часам")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// HourOccupancy is one hour bucket of the occupancy replay.
type HourOccupancy struct {
	Hour    int      `json:"hour"`
	Count   int      `json:"count"`
	Clients []string `json:"clients"`
}

// Occupancy handles GET /api/analytics/occupancy. The day's visit spans
// are replayed over 24 hour buckets with half-hour snapping: a client
// counts toward an hour only if present during its first half. Visits
// still open run to the end of the day.
func (controller *AnalyticsController) Occupancy(c *gin.Context) {
	now := controller.now()
	today := now.Format(entities.DateLayout)
	targetDate := c.DefaultQuery("date", today)

	spans, err := controller.store.DayVisits(targetDate)
	if err != nil {
		respondInternalError(c, err, "Get occupancy error", "Ошибка получения статистики загруженности")
		return
	}

	hourly := make([]HourOccupancy, 24)
	for hour := range hourly {
		hourly[hour] = HourOccupancy{Hour: hour, Clients: []string{}}
	}

	for _, span := range spans {
		inHour, inMinute := span.CheckInAt.Hour(), span.CheckInAt.Minute()
		outHour, outMinute := 23, 59
		if span.CheckOutAt != nil {
			outHour, outMinute = span.CheckOutAt.Hour(), span.CheckOutAt.Minute()
		}

		for hour := inHour; hour <= outHour; hour++ {
			if hour == inHour && inMinute >= 30 {
				continue
			}
			if hour == outHour && outMinute < 30 {
				continue
			}
			hourly[hour].Count++
			hourly[hour].Clients = append(hourly[hour].Clients, span.ClientName)
		}
	}

	var currentOccupancy int64
	if targetDate == today {
		currentOccupancy, err = controller.store.OpenVisitCount(targetDate)
		if err != nil {
			respondInternalError(c, err, "Get occupancy error", "Ошибка получения статистики загруженности")
			return
		}
	}

	peak := hourly[0]
	for _, bucket := range hourly[1:] {
		if bucket.Count > peak.Count {
			peak = bucket
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"date":             targetDate,
		"currentOccupancy": currentOccupancy,
		"hourlyOccupancy":  hourly,
		"peakHour":         peak,
		"totalVisits":      len(spans),
	})
}

// CurrentVisitors handles GET /api/analytics/current-visitors
func (controller *AnalyticsController) CurrentVisitors(c *gin.Context) {
	visitors, err := controller.store.CurrentVisitors(controller.now())
	if err != nil {
		respondInternalError(c, err, "Get current visitors error", "Ошибка получения списка посетителей")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(visitors),
		"visitors": visitors,
	})
}

type earningsByTypeView struct {
	MembershipType string  `json:"membership_type"`
	SessionsCount  int64   `json:"sessions_count"`
	Earned         float64 `json:"earned"`
	StandardPrice  float64 `json:"standard_price"`
}

type earningsByDayView struct {
	Date          string  `json:"date"`
	SessionsCount int64   `json:"sessions_count"`
	Earned        float64 `json:"earned"`
}

type earningsTopClientView struct {
	FullName      string  `json:"full_name"`
	Phone         string  `json:"phone"`
	SessionsCount int64   `json:"sessions_count"`
	TotalPaid     float64 `json:"total_paid"`
}

// Earnings handles GET /api/analytics/earnings. Each completed session
// earns price_paid/total_sessions of its ledger row; displayed amounts
// are rounded to whole currency units.
func (controller *AnalyticsController) Earnings(c *gin.Context) {
	filter := analytics.EarningsFilter{
		Period:    controller.period(c, "month"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	totals, err := controller.store.EarningsTotals(filter)
	if err != nil {
		respondInternalError(c, err, "Get earnings error", "Ошибка получения статистики заработка")
		return
	}

	byType, err := controller.store.EarningsByType(filter)
	if err != nil {
		respondInternalError(c, err, "Get earnings error", "Ошибка получения статистики заработка")
		return
	}

	byDay, err := controller.store.EarningsByDay(filter)
	if err != nil {
		respondInternalError(c, err, "Get earnings error", "Ошибка получения статистики заработка")
		return
	}

	topClients, err := controller.store.EarningsTopClients(filter, 10)
	if err != nil {
		respondInternalError(c, err, "Get earnings error", "Ошибка получения статистики заработка")
		return
	}

	var avgSessionPrice float64
	if totals.CompletedSessions > 0 {
		avgSessionPrice = totals.TotalEarned / float64(totals.CompletedSessions)
	}

	typeViews := make([]earningsByTypeView, 0, len(byType))
	for _, row := range byType {
		typeViews = append(typeViews, earningsByTypeView{
			MembershipType: row.MembershipType,
			SessionsCount:  row.SessionsCount,
			Earned:         math.Round(row.Earned),
			StandardPrice:  row.StandardPrice,
		})
	}

	dayViews := make([]earningsByDayView, 0, len(byDay))
	for _, row := range byDay {
		dayViews = append(dayViews, earningsByDayView{
			Date:          row.Date,
			SessionsCount: row.SessionsCount,
			Earned:        math.Round(row.Earned),
		})
	}

	clientViews := make([]earningsTopClientView, 0, len(topClients))
	for _, row := range topClients {
		clientViews = append(clientViews, earningsTopClientView{
			FullName:      row.FullName,
			Phone:         row.Phone,
			SessionsCount: row.SessionsCount,
			TotalPaid:     math.Round(row.TotalPaid),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"totalEarnings":     math.Round(totals.TotalEarned),
		"completedSessions": totals.CompletedSessions,
		"avgSessionPrice":   math.Round(avgSessionPrice),
		"earningsByType":    typeViews,
		"earningsByDay":     dayViews,
		"topClients":        clientViews,
	})
}
