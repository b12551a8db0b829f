package analytics

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/titangym/gymdesk/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_analytics_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Trainer{},
		&entities.Client{},
		&entities.MembershipType{},
		&entities.ClientMembership{},
		&entities.TrainingHistory{},
		&entities.Visit{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestClient(t *testing.T, db *gorm.DB, name string, trainerID *uint) *entities.Client {
	t.Helper()
	client := &entities.Client{
		UUID:             "uuid-" + name,
		FullName:         name,
		Phone:            "+79001234567",
		RegistrationDate: "2025-01-01",
		MembershipActive: true,
		TrainerID:        trainerID,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func createVisit(t *testing.T, db *gorm.DB, clientID uint, in time.Time, out *time.Time) {
	t.Helper()
	visit := &entities.Visit{ClientID: clientID, CheckInAt: in, CheckOutAt: out}
	if out != nil {
		minutes := int(out.Sub(in).Minutes())
		visit.DurationMinutes = &minutes
	}
	require.NoError(t, db.Create(visit).Error)
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("day matches only today", func(t *testing.T) {
		p := PeriodRange("day", now)
		assert.Equal(t, "2025-06-15", p.Day)
		assert.Empty(t, p.Since)
	})

	t.Run("week is a trailing lower bound", func(t *testing.T) {
		p := PeriodRange("week", now)
		assert.Equal(t, "2025-06-08", p.Since)
		assert.Empty(t, p.Day)
	})

	t.Run("month and year", func(t *testing.T) {
		assert.Equal(t, "2025-05-15", PeriodRange("month", now).Since)
		assert.Equal(t, "2024-06-15", PeriodRange("year", now).Since)
	})

	t.Run("unknown name is unbounded", func(t *testing.T) {
		p := PeriodRange("all", now)
		assert.Empty(t, p.Day)
		assert.Empty(t, p.Since)
	})
}

func TestRepository_Stats(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	trainer := &entities.Trainer{FullName: "Петров Пётр", Phone: "+79005556677"}
	require.NoError(t, db.Create(trainer).Error)

	visiting := createTestClient(t, db, "Иванов Иван", &trainer.ID)
	createTestClient(t, db, "Сидорова Мария", nil)

	lapsed := createTestClient(t, db, "Кузнецов Олег", nil)
	require.NoError(t, db.Model(lapsed).Update("membership_active", false).Error)

	day := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	createVisit(t, db, visiting.ID, day, nil)
	createVisit(t, db, visiting.ID, day.AddDate(0, 0, 1), nil)

	stats, err := repo.Stats(Period{Name: "month", Since: "2025-06-01"}, "2025-06-15")
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalVisits)
	assert.Equal(t, int64(1), stats.UniqueVisitors)
	assert.Equal(t, int64(2), stats.ActiveMembers)
	assert.Equal(t, int64(3), stats.TotalClients)
	assert.Equal(t, int64(1), stats.TotalTrainers)
	// 1 visitor out of 2 active members, one decimal.
	assert.Equal(t, 50.0, stats.AttendanceRate)
	assert.Equal(t, "month", stats.Period)
}

func TestRepository_TopClients(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	busy := createTestClient(t, db, "Иванов Иван", nil)
	casual := createTestClient(t, db, "Сидорова Мария", nil)

	day := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		createVisit(t, db, busy.ID, day.AddDate(0, 0, i), nil)
	}
	createVisit(t, db, casual.ID, day, nil)

	rows, err := repo.TopClients(10, Period{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Иванов Иван", rows[0].FullName)
	assert.Equal(t, int64(3), rows[0].VisitCount)
	assert.Equal(t, "2025-06-12", rows[0].LastVisit)
}

func TestRepository_VisitQueries(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	client := createTestClient(t, db, "Иванов Иван", nil)

	in := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	out := in.Add(90 * time.Minute)
	createVisit(t, db, client.ID, in, &out)
	createVisit(t, db, client.ID, in.Add(5*time.Hour), nil)
	createVisit(t, db, client.ID, in.AddDate(0, 0, 1), nil)

	t.Run("day visits", func(t *testing.T) {
		spans, err := repo.DayVisits("2025-06-10")
		require.NoError(t, err)
		require.Len(t, spans, 2)
		assert.Equal(t, "Иванов Иван", spans[0].ClientName)
		require.NotNil(t, spans[0].CheckOutAt)
		assert.Nil(t, spans[1].CheckOutAt)
	})

	t.Run("open visit count", func(t *testing.T) {
		count, err := repo.OpenVisitCount("2025-06-10")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("current visitors with minutes in gym", func(t *testing.T) {
		now := in.Add(6 * time.Hour)
		visitors, err := repo.CurrentVisitors(now)
		require.NoError(t, err)
		require.Len(t, visitors, 2)
		assert.Equal(t, "Иванов Иван", visitors[0].FullName)
		assert.Equal(t, 60, visitors[0].MinutesInGym)
	})

	t.Run("visits chart groups by day", func(t *testing.T) {
		points, err := repo.VisitsChart(30, in.AddDate(0, 0, 2))
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, "2025-06-10", points[0].Date)
		assert.Equal(t, int64(2), points[0].Count)
	})

	t.Run("peak hours", func(t *testing.T) {
		rows, err := repo.PeakHours(Period{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 9, rows[0].Hour)
		assert.Equal(t, int64(2), rows[0].Count)
		assert.Equal(t, 14, rows[1].Hour)
	})
}

// seedEarnings buys a 5-session package for 7000 and completes sessions
// on the given days, so each one earns 1400.
func seedEarnings(t *testing.T, db *gorm.DB, days []string) *entities.Client {
	t.Helper()

	client := createTestClient(t, db, "Иванов Иван", nil)
	mt := &entities.MembershipType{Name: "5 тренировок", SessionsCount: 5, Price: 7000, IsActive: true}
	require.NoError(t, db.Create(mt).Error)

	cm := &entities.ClientMembership{
		ClientID:          client.ID,
		MembershipTypeID:  mt.ID,
		PurchaseDate:      "2025-06-01",
		TotalSessions:     5,
		RemainingSessions: 5 - len(days),
		PricePaid:         7000,
		IsActive:          true,
	}
	require.NoError(t, db.Create(cm).Error)

	for _, day := range days {
		history := &entities.TrainingHistory{
			ClientID:        client.ID,
			MembershipID:    cm.ID,
			TrainingDate:    day,
			TrainingTime:    "10:00",
			DurationMinutes: 60,
		}
		require.NoError(t, db.Create(history).Error)
	}
	return client
}

func TestRepository_Earnings(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedEarnings(t, db, []string{"2025-06-02", "2025-06-02", "2025-06-05"})

	t.Run("totals pro-rate the package price", func(t *testing.T) {
		totals, err := repo.EarningsTotals(EarningsFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), totals.CompletedSessions)
		assert.InDelta(t, 4200.0, totals.TotalEarned, 0.01)
	})

	t.Run("by type", func(t *testing.T) {
		rows, err := repo.EarningsByType(EarningsFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "5 тренировок", rows[0].MembershipType)
		assert.Equal(t, int64(3), rows[0].SessionsCount)
		assert.InDelta(t, 4200.0, rows[0].Earned, 0.01)
		assert.Equal(t, 7000.0, rows[0].StandardPrice)
	})

	t.Run("by day", func(t *testing.T) {
		rows, err := repo.EarningsByDay(EarningsFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2025-06-02", rows[0].Date)
		assert.Equal(t, int64(2), rows[0].SessionsCount)
		assert.InDelta(t, 2800.0, rows[0].Earned, 0.01)
	})

	t.Run("top clients", func(t *testing.T) {
		rows, err := repo.EarningsTopClients(EarningsFilter{}, 10)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Иванов Иван", rows[0].FullName)
		assert.InDelta(t, 4200.0, rows[0].TotalPaid, 0.01)
	})

	t.Run("explicit date range wins", func(t *testing.T) {
		totals, err := repo.EarningsTotals(EarningsFilter{
			Period:    Period{Since: "2025-01-01"},
			StartDate: "2025-06-05",
			EndDate:   "2025-06-05",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), totals.CompletedSessions)
		assert.InDelta(t, 1400.0, totals.TotalEarned, 0.01)
	})

	t.Run("empty period", func(t *testing.T) {
		totals, err := repo.EarningsTotals(EarningsFilter{Period: Period{Day: "2024-01-01"}})
		require.NoError(t, err)
		assert.Equal(t, int64(0), totals.CompletedSessions)
		assert.Equal(t, 0.0, totals.TotalEarned)
	})
}
