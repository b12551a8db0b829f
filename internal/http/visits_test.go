package http

import (
	"bytes"
	"encoding/json"
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

	"github.com/titangym/gymdesk/internal/database/clients"
	"github.com/titangym/gymdesk/internal/database/visits"
	"github.com/titangym/gymdesk/internal/entities"
)

func setupVisitsTest(t *testing.T) (*gorm.DB, *VisitsController, func()) {
	gin.SetMode(gin.TestMode)
	dbPath := "./test_visits_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

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

	controller := NewVisitsController(visits.NewRepository(db), clients.NewRepository(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, controller, cleanup
}

func scan(t *testing.T, controller *VisitsController, body any) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	router.POST("/api/visits/checkin", controller.CheckIn)

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/visits/checkin", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func seedScanClient(t *testing.T, db *gorm.DB, clientUUID string) *entities.Client {
	t.Helper()
	client := &entities.Client{
		UUID:             clientUUID,
		FullName:         "Иванов Иван",
		Phone:            "+79001234567",
		RegistrationDate: "2025-01-01",
		MembershipActive: true,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func TestVisitsController_CheckIn(t *testing.T) {
	t.Run("missing uuid", func(t *testing.T) {
		_, controller, cleanup := setupVisitsTest(t)
		defer cleanup()

		recorder := scan(t, controller, gin.H{})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "UUID не указан", decodeBody(t, recorder)["error"])
	})

	t.Run("unknown uuid", func(t *testing.T) {
		_, controller, cleanup := setupVisitsTest(t)
		defer cleanup()

		recorder := scan(t, controller, gin.H{"uuid": "no-such-client"})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "Клиент не найден", decodeBody(t, recorder)["error"])
	})

	t.Run("inactive membership is rejected before any row is written", func(t *testing.T) {
		db, controller, cleanup := setupVisitsTest(t)
		defer cleanup()

		client := seedScanClient(t, db, "scan-inactive")
		require.NoError(t, db.Model(client).Update("membership_active", false).Error)

		recorder := scan(t, controller, gin.H{"uuid": "scan-inactive"})
		assert.Equal(t, http.StatusForbidden, recorder.Code)

		body := decodeBody(t, recorder)
		assert.Equal(t, "Абонемент неактивен", body["error"])
		clientBlock := body["client"].(map[string]any)
		assert.Equal(t, "Иванов Иван", clientBlock["full_name"])
		assert.Equal(t, false, clientBlock["membership_active"])

		var count int64
		require.NoError(t, db.Model(&entities.Visit{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("membership expired yesterday is rejected", func(t *testing.T) {
		db, controller, cleanup := setupVisitsTest(t)
		defer cleanup()

		client := seedScanClient(t, db, "scan-expired")
		require.NoError(t, db.Model(client).Update("membership_end_date", "2025-06-14").Error)
		controller.now = func() time.Time {
			return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
		}

		recorder := scan(t, controller, gin.H{"uuid": "scan-expired"})
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Equal(t, "Срок действия абонемента истёк", decodeBody(t, recorder)["error"])
	})

	t.Run("membership ending today is still valid", func(t *testing.T) {
		db, controller, cleanup := setupVisitsTest(t)
		defer cleanup()

		client := seedScanClient(t, db, "scan-last-day")
		require.NoError(t, db.Model(client).Update("membership_end_date", "2025-06-15").Error)
		controller.now = func() time.Time {
			return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
		}

		recorder := scan(t, controller, gin.H{"uuid": "scan-last-day"})
		assert.Equal(t, http.StatusCreated, recorder.Code)

		body := decodeBody(t, recorder)
		assert.Equal(t, "checkin", body["action"])
		assert.Equal(t, "Добро пожаловать, Иванов Иван!", body["message"])
	})

	t.Run("second scan closes the open visit", func(t *testing.T) {
		db, controller, cleanup := setupVisitsTest(t)
		defer cleanup()

		seedScanClient(t, db, "scan-toggle")

		in := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
		controller.now = func() time.Time { return in }

		recorder := scan(t, controller, gin.H{"uuid": "scan-toggle"})
		require.Equal(t, http.StatusCreated, recorder.Code)

		controller.now = func() time.Time { return in.Add(75 * time.Minute) }

		recorder = scan(t, controller, gin.H{"uuid": "scan-toggle"})
		assert.Equal(t, http.StatusOK, recorder.Code)

		body := decodeBody(t, recorder)
		assert.Equal(t, "checkout", body["action"])
		assert.Equal(t, "До свидания, Иванов Иван! Вы были в клубе 75 минут", body["message"])

		visit := body["visit"].(map[string]any)
		assert.Equal(t, 75.0, visit["duration_minutes"])

		// The third scan opens a fresh visit again.
		recorder = scan(t, controller, gin.H{"uuid": "scan-toggle"})
		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, "checkin", decodeBody(t, recorder)["action"])

		var count int64
		require.NoError(t, db.Model(&entities.Visit{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})
}

func TestVisitsController_Delete(t *testing.T) {
	db, controller, cleanup := setupVisitsTest(t)
	defer cleanup()

	client := seedScanClient(t, db, "scan-delete")
	visit := &entities.Visit{ClientID: client.ID, CheckInAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(visit).Error)

	router := gin.New()
	router.DELETE("/api/visits/:id", controller.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/visits/1", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Посещение успешно удалено", decodeBody(t, recorder)["message"])

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Посещение не найдено", decodeBody(t, recorder)["error"])
}
