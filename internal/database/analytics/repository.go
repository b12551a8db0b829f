// Package analytics provides the read-side reporting queries: visit
// statistics, peak hours, occupancy inputs and revenue attribution.
//
// Period filters are computed in Go and passed to the engine as bound
// parameters; no date SQL is assembled from strings.
package analytics

import (
	"time"

	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/entities"
)

// Period is a typed date filter derived from a named reporting period.
// Exactly one of Day/Since is set, or neither for an unbounded query.
type Period struct {
	Name  string
	Day   string // match this day only
	Since string // lower bound, inclusive
}

// PeriodRange resolves a named period ("day", "week", "month", "year")
// into concrete date bounds relative to now. Unknown names yield an
// unbounded period.
func PeriodRange(name string, now time.Time) Period {
	p := Period{Name: name}
	switch name {
	case "day":
		p.Day = now.Format(entities.DateLayout)
	case "week":
		p.Since = now.AddDate(0, 0, -7).Format(entities.DateLayout)
	case "month":
		p.Since = now.AddDate(0, -1, 0).Format(entities.DateLayout)
	case "year":
		p.Since = now.AddDate(-1, 0, 0).Format(entities.DateLayout)
	}
	return p
}

// EarningsFilter bounds the revenue report. Explicit dates win over the
// named period.
type EarningsFilter struct {
	Period    Period
	StartDate string
	EndDate   string
}

type Stats struct {
	TotalVisits    int64   `json:"totalVisits"`
	UniqueVisitors int64   `json:"uniqueVisitors"`
	ActiveMembers  int64   `json:"activeMembers"`
	TotalClients   int64   `json:"totalClients"`
	TotalTrainers  int64   `json:"totalTrainers"`
	AttendanceRate float64 `json:"attendanceRate"`
	Period         string  `json:"period"`
}

type TopClient struct {
	ID          uint    `json:"id"`
	FullName    string  `json:"full_name"`
	Phone       string  `json:"phone"`
	TrainerName *string `json:"trainer_name"`
	VisitCount  int64   `json:"visit_count"`
	LastVisit   string  `json:"last_visit"`
}

type TrainerStat struct {
	ID             uint   `json:"id"`
	FullName       string `json:"full_name"`
	Specialization string `json:"specialization,omitempty"`
	TotalClients   int64  `json:"total_clients"`
	ActiveClients  int64  `json:"active_clients"`
	TotalVisits    int64  `json:"total_visits"`
}

type ChartPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// VisitSpan is one day's check-in/check-out pair used for the occupancy
// replay.
type VisitSpan struct {
	CheckInAt  time.Time  `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at"`
	ClientName string     `json:"client_name"`
}

type CurrentVisitor struct {
	VisitID      uint      `json:"visit_id"`
	CheckInAt    time.Time `json:"check_in_at"`
	ClientID     uint      `json:"client_id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	TrainerName  *string   `json:"trainer_name"`
	MinutesInGym int       `json:"minutes_in_gym"`
}

type EarningsTotals struct {
	CompletedSessions int64   `json:"completed_sessions"`
	TotalEarned       float64 `json:"total_earned"`
}

type EarningsByType struct {
	MembershipType string  `json:"membership_type"`
	SessionsCount  int64   `json:"sessions_count"`
	Earned         float64 `json:"earned"`
	StandardPrice  float64 `json:"standard_price"`
}

type EarningsByDay struct {
	Date          string  `json:"date"`
	SessionsCount int64   `json:"sessions_count"`
	Earned        float64 `json:"earned"`
}

type EarningsTopClient struct {
	FullName      string  `json:"full_name"`
	Phone         string  `json:"phone"`
	SessionsCount int64   `json:"sessions_count"`
	TotalPaid     float64 `json:"total_paid"`
}

// Repository handles all reporting queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// visitPeriod constrains a query on the visits table by check-in day.
func visitPeriod(query *gorm.DB, p Period) *gorm.DB {
	if p.Day != "" {
		return query.Where("DATE(visits.check_in_at) = ?", p.Day)
	}
	if p.Since != "" {
		return query.Where("DATE(visits.check_in_at) >= ?", p.Since)
	}
	return query
}

// Stats returns the dashboard headline numbers for a period.
func (r *Repository) Stats(p Period, today string) (*Stats, error) {
	stats := &Stats{Period: p.Name}

	err := visitPeriod(r.db.Table("visits"), p).Count(&stats.TotalVisits).Error
	if err != nil {
		return nil, err
	}

	err = visitPeriod(r.db.Table("visits"), p).
		Distinct("client_id").Count(&stats.UniqueVisitors).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&entities.Client{}).
		Where("membership_active = ? AND (membership_end_date IS NULL OR membership_end_date >= ?)", true, today).
		Count(&stats.ActiveMembers).Error
	if err != nil {
		return nil, err
	}

	if err := r.db.Model(&entities.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&entities.Trainer{}).Count(&stats.TotalTrainers).Error; err != nil {
		return nil, err
	}

	if stats.ActiveMembers > 0 {
		rate := float64(stats.UniqueVisitors) / float64(stats.ActiveMembers) * 100
		// One decimal, matching the dashboard display.
		stats.AttendanceRate = float64(int(rate*10+0.5)) / 10
	}
	return stats, nil
}

// TopClients ranks clients by visit count within the period.
func (r *Repository) TopClients(limit int, p Period) ([]TopClient, error) {
	query := r.db.Table("clients").
		Select("clients.id, clients.full_name, clients.phone, trainers.full_name AS trainer_name, COUNT(visits.id) AS visit_count, MAX(DATE(visits.check_in_at)) AS last_visit").
		Joins("JOIN visits ON visits.client_id = clients.id").
		Joins("LEFT JOIN trainers ON trainers.id = clients.trainer_id")
	query = visitPeriod(query, p)

	var rows []TopClient
	err := query.Group("clients.id").
		Order("visit_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TrainerStats aggregates client assignments and their visit volume per
// trainer within the period.
func (r *Repository) TrainerStats(p Period) ([]TrainerStat, error) {
	sub := r.db.Table("visits").
		Select("visits.client_id AS client_id, COUNT(*) AS visit_count")
	sub = visitPeriod(sub, p).Group("visits.client_id")

	var rows []TrainerStat
	err := r.db.Table("trainers").
		Select("trainers.id, trainers.full_name, trainers.specialization, "+
			"COUNT(DISTINCT clients.id) AS total_clients, "+
			"COUNT(DISTINCT CASE WHEN clients.membership_active = 1 THEN clients.id END) AS active_clients, "+
			"COALESCE(SUM(v.visit_count), 0) AS total_visits").
		Joins("LEFT JOIN clients ON clients.trainer_id = trainers.id").
		Joins("LEFT JOIN (?) v ON v.client_id = clients.id", sub).
		Group("trainers.id").
		Order("total_visits DESC").
		Scan(&rows).Error
	return rows, err
}

// VisitsChart counts visits per day over the trailing window.
func (r *Repository) VisitsChart(days int, now time.Time) ([]ChartPoint, error) {
	since := now.AddDate(0, 0, -days).Format(entities.DateLayout)

	var rows []ChartPoint
	err := r.db.Table("visits").
		Select("DATE(check_in_at) AS date, COUNT(*) AS count").
		Where("DATE(check_in_at) >= ?", since).
		Group("DATE(check_in_at)").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// PeakHours counts check-ins per hour of day within the period.
func (r *Repository) PeakHours(p Period) ([]HourCount, error) {
	query := r.db.Table("visits").
		Select("CAST(strftime('%H', check_in_at) AS INTEGER) AS hour, COUNT(*) AS count")
	query = visitPeriod(query, p)

	var rows []HourCount
	err := query.Group("hour").Order("hour ASC").Scan(&rows).Error
	return rows, err
}

// DayVisits returns the check-in/check-out spans of one day, ordered by
// check-in, for the occupancy replay.
func (r *Repository) DayVisits(date string) ([]VisitSpan, error) {
	var rows []VisitSpan
	err := r.db.Table("visits").
		Select("visits.check_in_at, visits.check_out_at, clients.full_name AS client_name").
		Joins("JOIN clients ON clients.id = visits.client_id").
		Where("DATE(visits.check_in_at) = ?", date).
		Order("visits.check_in_at ASC").
		Scan(&rows).Error
	return rows, err
}

// OpenVisitCount counts visits of the given day that are still open.
func (r *Repository) OpenVisitCount(date string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Visit{}).
		Where("DATE(check_in_at) = ? AND check_out_at IS NULL", date).
		Count(&count).Error
	return count, err
}

// CurrentVisitors lists everyone with an open visit and how long they
// have been in, oldest check-in first.
func (r *Repository) CurrentVisitors(now time.Time) ([]CurrentVisitor, error) {
	var rows []CurrentVisitor
	err := r.db.Table("visits").
		Select("visits.id AS visit_id, visits.check_in_at, clients.id AS client_id, clients.full_name, clients.phone, trainers.full_name AS trainer_name").
		Joins("JOIN clients ON clients.id = visits.client_id").
		Joins("LEFT JOIN trainers ON trainers.id = clients.trainer_id").
		Where("visits.check_out_at IS NULL").
		Order("visits.check_in_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].MinutesInGym = int(now.Sub(rows[i].CheckInAt).Minutes())
	}
	return rows, nil
}

// historyPeriod constrains a query on training history by training day.
func historyPeriod(query *gorm.DB, f EarningsFilter) *gorm.DB {
	if f.StartDate != "" && f.EndDate != "" {
		return query.Where("training_histories.training_date BETWEEN ? AND ?", f.StartDate, f.EndDate)
	}
	if f.Period.Day != "" {
		return query.Where("training_histories.training_date = ?", f.Period.Day)
	}
	if f.Period.Since != "" {
		return query.Where("training_histories.training_date >= ?", f.Period.Since)
	}
	return query
}

// earningsBase joins history onto the ledger it draws from. Each completed
// session earns price_paid/total_sessions of its originating ledger row.
func (r *Repository) earningsBase(f EarningsFilter) *gorm.DB {
	query := r.db.Table("training_histories").
		Joins("JOIN client_memberships ON client_memberships.id = training_histories.membership_id")
	return historyPeriod(query, f)
}

// EarningsTotals sums the pro-rated per-session earnings of the period.
func (r *Repository) EarningsTotals(f EarningsFilter) (*EarningsTotals, error) {
	var totals EarningsTotals
	err := r.earningsBase(f).
		Select("COUNT(training_histories.id) AS completed_sessions, COALESCE(SUM(client_memberships.price_paid / client_memberships.total_sessions), 0) AS total_earned").
		Take(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// EarningsByType buckets earnings by membership type.
func (r *Repository) EarningsByType(f EarningsFilter) ([]EarningsByType, error) {
	var rows []EarningsByType
	err := r.earningsBase(f).
		Joins("JOIN membership_types ON membership_types.id = client_memberships.membership_type_id").
		Select("membership_types.name AS membership_type, COUNT(training_histories.id) AS sessions_count, COALESCE(SUM(client_memberships.price_paid / client_memberships.total_sessions), 0) AS earned, membership_types.price AS standard_price").
		Group("membership_types.id, membership_types.name, membership_types.price").
		Order("earned DESC").
		Scan(&rows).Error
	return rows, err
}

// EarningsByDay buckets earnings by training day for charting.
func (r *Repository) EarningsByDay(f EarningsFilter) ([]EarningsByDay, error) {
	var rows []EarningsByDay
	err := r.earningsBase(f).
		Select("training_histories.training_date AS date, COUNT(training_histories.id) AS sessions_count, COALESCE(SUM(client_memberships.price_paid / client_memberships.total_sessions), 0) AS earned").
		Group("training_histories.training_date").
		Order("training_histories.training_date ASC").
		Scan(&rows).Error
	return rows, err
}

// EarningsTopClients ranks clients by pro-rated spend in the period.
func (r *Repository) EarningsTopClients(f EarningsFilter, limit int) ([]EarningsTopClient, error) {
	var rows []EarningsTopClient
	err := r.earningsBase(f).
		Joins("JOIN clients ON clients.id = training_histories.client_id").
		Select("clients.full_name, clients.phone, COUNT(training_histories.id) AS sessions_count, COALESCE(SUM(client_memberships.price_paid / client_memberships.total_sessions), 0) AS total_paid").
		Group("clients.id, clients.full_name, clients.phone").
		Order("total_paid DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
