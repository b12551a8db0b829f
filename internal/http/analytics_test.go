package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/titangym/gymdesk/internal/database/analytics"
	"github.com/titangym/gymdesk/internal/entities"
)

func setupAnalyticsTest(t *testing.T) (*gorm.DB, *AnalyticsController, func()) {
	gin.SetMode(gin.TestMode)
	dbPath := "./test_analytics_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Trainer{},
		&entities.Client{},
		&entities.Visit{},
	)
	require.NoError(t, err)

	controller := NewAnalyticsController(analytics.NewRepository(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, controller, cleanup
}

func seedOccupancyVisit(t *testing.T, db *gorm.DB, name string, in time.Time, out *time.Time) {
	t.Helper()
	client := &entities.Client{
		UUID:             "uuid-" + name,
		FullName:         name,
		Phone:            "+79001234567",
		RegistrationDate: "2025-01-01",
		MembershipActive: true,
	}
	require.NoError(t, db.Create(client).Error)
	require.NoError(t, db.Create(&entities.Visit{
		ClientID:   client.ID,
		CheckInAt:  in,
		CheckOutAt: out,
	}).Error)
}

func getOccupancy(t *testing.T, controller *AnalyticsController, query string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	router.GET("/api/analytics/occupancy", controller.Occupancy)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/occupancy"+query, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAnalyticsController_Occupancy(t *testing.T) {
	day := func(hour, minute int) time.Time {
		return time.Date(2025, 6, 10, hour, minute, 0, 0, time.UTC)
	}

	t.Run("replays the day with half-hour snapping", func(t *testing.T) {
		db, controller, cleanup := setupAnalyticsTest(t)
		defer cleanup()

		// Present through the first half of hour 9 only.
		earlyOut := day(9, 40)
		earlyIn := day(9, 0)
		seedOccupancyVisit(t, db, "Сидорова Мария", earlyIn, &earlyOut)

		// Arrived at :45 (entry hour dropped) and left at :10 (exit hour
		// dropped), so only hour 11 counts.
		lateOut := day(12, 10)
		seedOccupancyVisit(t, db, "Иванов Иван", day(10, 45), &lateOut)

		// Still in the gym: the span runs to the end of the day, with the
		// :50 arrival dropping hour 13.
		seedOccupancyVisit(t, db, "Кузнецов Олег", day(13, 50), nil)

		controller.now = func() time.Time { return day(18, 0) }

		recorder := getOccupancy(t, controller, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		body := decodeBody(t, recorder)
		assert.Equal(t, "2025-06-10", body["date"])
		assert.Equal(t, 3.0, body["totalVisits"])
		assert.Equal(t, 1.0, body["currentOccupancy"])

		hourly := body["hourlyOccupancy"].([]any)
		require.Len(t, hourly, 24)

		count := func(hour int) float64 {
			bucket := hourly[hour].(map[string]any)
			require.Equal(t, float64(hour), bucket["hour"])
			return bucket["count"].(float64)
		}

		assert.Equal(t, 1.0, count(9))
		assert.Equal(t, 0.0, count(10))
		assert.Equal(t, 1.0, count(11))
		assert.Equal(t, 0.0, count(12))
		assert.Equal(t, 0.0, count(13))
		for hour := 14; hour <= 23; hour++ {
			assert.Equal(t, 1.0, count(hour), "hour %d", hour)
		}

		names := hourly[11].(map[string]any)["clients"].([]any)
		require.Len(t, names, 1)
		assert.Equal(t, "Иванов Иван", names[0])

		// Ties resolve to the earliest hour.
		peak := body["peakHour"].(map[string]any)
		assert.Equal(t, 9.0, peak["hour"])
		assert.Equal(t, 1.0, peak["count"])
	})

	t.Run("empty day yields zeroed buckets", func(t *testing.T) {
		_, controller, cleanup := setupAnalyticsTest(t)
		defer cleanup()

		controller.now = func() time.Time { return day(18, 0) }

		recorder := getOccupancy(t, controller, "?date=2025-06-01")
		require.Equal(t, http.StatusOK, recorder.Code)

		body := decodeBody(t, recorder)
		assert.Equal(t, "2025-06-01", body["date"])
		assert.Equal(t, 0.0, body["totalVisits"])
		// Past dates never report a live headcount.
		assert.Equal(t, 0.0, body["currentOccupancy"])

		hourly := body["hourlyOccupancy"].([]any)
		require.Len(t, hourly, 24)
		for _, raw := range hourly {
			bucket := raw.(map[string]any)
			assert.Equal(t, 0.0, bucket["count"])
			assert.Empty(t, bucket["clients"])
		}
	})
}
