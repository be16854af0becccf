package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"rota-backend/config"
	"rota-backend/internal/api"
	"rota-backend/internal/db"
	"rota-backend/internal/model"
	"rota-backend/internal/mw"
	"rota-backend/internal/notification"
	"rota-backend/internal/store"
)

// TestRotaLifecycle walks one duty slot through its whole life over the
// HTTP API: a member authenticates, claims tomorrow's slot, the roster
// and statistics reflect the claim, an admin reassigns the slot to
// another member (queueing a push notification), and the slot is finally
// released.
func TestRotaLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// --- Test Setup ---

	// 1. In-memory SQLite with the real migration set.
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to the in-memory database: %v", err)
	}
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	assert.NoError(t, db.Migrate(testDB))

	// 2. Configuration with one two-person branch.
	cfg := &config.Config{
		Server: config.ServerConfig{
			RateLimitPerSec: 1000,
			RateLimitBurst:  1000,
		},
		Push: config.PushConfig{PublicKey: "integration-public-key"},
		Branches: []config.BranchConfig{
			{Code: "lns", Name: "ЛНС", MaxDuties: 2, DayStartHour: 0, DayEndHour: 24},
		},
	}

	gormStore := store.NewGormStore(testDB)
	assert.NoError(t, gormStore.SeedBranches(context.Background(), cfg.Branches))

	assert.NoError(t, testDB.Create(&model.User{ID: 1, Username: "admin", Nick: "Админ"}).Error)
	assert.NoError(t, testDB.Create(&model.User{ID: 2, Username: "owl", Nick: "Сова"}).Error)
	assert.NoError(t, testDB.Create(&model.User{ID: 3, Username: "badger", Nick: "Барсук"}).Error)
	assert.NoError(t, testDB.Create(&model.Membership{UserID: 1, BranchCode: "lns", Admin: true}).Error)
	assert.NoError(t, testDB.Create(&model.Membership{UserID: 2, BranchCode: "lns"}).Error)
	assert.NoError(t, testDB.Create(&model.Membership{UserID: 3, BranchCode: "lns"}).Error)

	// 3. A real worker pool as the notifier. It is never started, so
	// dispatched jobs stay observable on its channel.
	pool := notification.NewWorkerPool(1, gormStore, nil)

	router := api.NewRouter(gormStore, mw.NewResponseCache(time.Minute), pool, cfg)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			assert.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	slot := "09:00 - 10:00"
	rotaPath := fmt.Sprintf("/api/rota?branch=lns&date=%s", tomorrow)

	// --- Cycle 1: Member authenticates and claims tomorrow's slot ---
	t.Run("Cycle 1: Member Claims A Slot", func(t *testing.T) {
		w := do(http.MethodGet, "/api/auth?user_id=2", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var auth struct {
			RotaAdmin []string `json:"rotaAdmin"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
		assert.Empty(t, auth.RotaAdmin, "Member 2 is not an admin")

		w = do(http.MethodPost, "/api/updateRota", gin.H{
			"type": "add", "branch": "lns", "date": tomorrow,
			"timeRange": slot, "userId": 2, "viewerId": 2,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		w = do(http.MethodGet, rotaPath, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var day map[string][]map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))
		if assert.Len(t, day[slot], 1, "The claimed slot should have one occupant") {
			assert.Equal(t, "Сова", day[slot][0]["nick"])
		}

		var dutyCount int64
		testDB.Model(&model.Duty{}).Where("branch_code = ? AND user_id = ?", "lns", 2).Count(&dutyCount)
		assert.Equal(t, int64(1), dutyCount)
	})

	// --- Cycle 2: Statistics reflect the claim ---
	t.Run("Cycle 2: Statistics Count The Duty", func(t *testing.T) {
		rangeEnd := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		rangeStart := time.Now().Format("2006-01-02")
		w := do(http.MethodPost, "/api/stats", gin.H{
			"branch":     "lns",
			"user_ids":   []int64{2, 3},
			"dateRanges": [][]string{{rangeStart, rangeEnd}},
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var stats []struct {
			User string `json:"user"`
			Data []struct {
				Count int `json:"count"`
			} `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		if assert.Len(t, stats, 2) {
			assert.Equal(t, "Барсук", stats[0].User)
			assert.Equal(t, 0, stats[0].Data[0].Count, "Member 3 has no duties yet")
			assert.Equal(t, "Сова", stats[1].User)
			assert.Equal(t, 1, stats[1].Data[0].Count)
		}
	})

	// --- Cycle 3: Admin reassigns the slot to member 3 ---
	t.Run("Cycle 3: Admin Reassigns The Slot", func(t *testing.T) {
		w := do(http.MethodPost, "/api/updateRota", gin.H{
			"type": "remove", "branch": "lns", "date": tomorrow,
			"timeRange": slot, "userId": 2, "viewerId": 1,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		w = do(http.MethodPost, "/api/updateRota", gin.H{
			"type": "add", "branch": "lns", "date": tomorrow,
			"timeRange": slot, "userId": 3, "viewerId": 1,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		// Both admin actions were on someone else's behalf; both queued
		// a notification job.
		assert.Len(t, pool.Jobs(), 2)
		removal := <-pool.Jobs()
		assert.Equal(t, notification.KindRemoved, removal.Kind)
		assert.Equal(t, int64(2), removal.UserID)
		addition := <-pool.Jobs()
		assert.Equal(t, notification.KindAdded, addition.Kind)
		assert.Equal(t, int64(3), addition.UserID)

		w = do(http.MethodGet, rotaPath, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var day map[string][]map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))
		if assert.Len(t, day[slot], 1) {
			assert.Equal(t, "Барсук", day[slot][0]["nick"])
		}
	})

	// --- Cycle 4: Member 3 releases the slot ---
	t.Run("Cycle 4: Member Releases The Slot", func(t *testing.T) {
		w := do(http.MethodPost, "/api/updateRota", gin.H{
			"type": "remove", "branch": "lns", "date": tomorrow,
			"timeRange": slot, "userId": 3, "viewerId": 3,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		// Self-release queues no notification.
		assert.Empty(t, pool.Jobs())

		w = do(http.MethodGet, rotaPath, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "{}", w.Body.String(), "The roster should be empty again")

		var dutyCount int64
		testDB.Model(&model.Duty{}).Where("branch_code = ?", "lns").Count(&dutyCount)
		assert.Equal(t, int64(0), dutyCount)
	})
}
