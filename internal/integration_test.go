package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"comanda-backend/config"
	"comanda-backend/internal/api"
	"comanda-backend/internal/auth"
	"comanda-backend/internal/events"
	"comanda-backend/internal/model"
	"comanda-backend/internal/store"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	hub    *events.Hub
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Group{}, &model.User{}, &model.Table{}, &model.Category{},
		&model.MenuItem{}, &model.Order{}, &model.OrderLine{},
		&model.Shift{}, &model.PushSubscription{},
	))

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	meseros := model.Group{Name: auth.GroupWaitstaff}
	cocina := model.Group{Name: auth.GroupKitchen}
	gerente := model.Group{Name: auth.GroupManager}
	require.NoError(t, db.Create(&meseros).Error)
	require.NoError(t, db.Create(&cocina).Error)
	require.NoError(t, db.Create(&gerente).Error)

	users := []model.User{
		{Username: "maria", PasswordHash: string(hash), Groups: []model.Group{meseros}},
		{Username: "luis", PasswordHash: string(hash), Groups: []model.Group{cocina}},
		{Username: "ana", PasswordHash: string(hash), Groups: []model.Group{gerente}},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}

	table := model.Table{Number: 5, Status: model.TableAvailable}
	require.NoError(t, db.Create(&table).Error)

	mains := model.Category{Name: "Mains", Station: model.StationKitchen}
	drinks := model.Category{Name: "Drinks", Station: model.StationBar}
	require.NoError(t, db.Create(&mains).Error)
	require.NoError(t, db.Create(&drinks).Error)
	require.NoError(t, db.Create(&model.MenuItem{
		Name: "Milanesa", Price: decimal.RequireFromString("9.50"),
		CategoryID: mains.ID, Available: true,
	}).Error)
	require.NoError(t, db.Create(&model.MenuItem{
		Name: "Limonada", Price: decimal.RequireFromString("3.25"),
		CategoryID: drinks.ID, Available: true,
	}).Error)

	hub := events.NewHub(16)
	t.Cleanup(hub.Close)
	s := store.NewGormStore(db, hub, nil)

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 60
	cfg.Auth.JWTSecret = "integration-secret"
	cfg.Auth.TokenTTL = time.Hour

	return &testEnv{router: api.NewRouter(s, hub, nil, cfg), db: db, hub: hub}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username string) (string, int) {
	t.Helper()
	w := e.request(t, "POST", "/api/token", "", gin.H{"username": username, "password": "pw"})
	if w.Code != http.StatusOK {
		return "", w.Code
	}
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, w.Code
}

// TestServiceDay walks a full day of operation through the HTTP surface:
// opening a shift, taking an order, preparing and serving it, billing
// the table and marking it paid.
func TestServiceDay(t *testing.T) {
	env := setupEnv(t)

	// Waitstaff cannot log in before a shift is opened.
	_, code := env.login(t, "maria")
	assert.Equal(t, http.StatusForbidden, code)

	managerToken, code := env.login(t, "ana")
	require.Equal(t, http.StatusOK, code)

	w := env.request(t, "POST", "/api/shifts/open", managerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var shift model.Shift
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shift))

	waiterToken, code := env.login(t, "maria")
	require.Equal(t, http.StatusOK, code)
	cookToken, code := env.login(t, "luis")
	require.Equal(t, http.StatusOK, code)

	// The waiter takes an order: two milanesas and a lemonade.
	w = env.request(t, "POST", "/api/orders", waiterToken, gin.H{
		"tableId": 1,
		"lines": []gin.H{
			{"menuItemId": 1, "quantity": 2},
			{"menuItemId": 2, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Len(t, order.Lines, 2)

	// The table flips to occupied.
	var table model.Table
	require.NoError(t, env.db.First(&table, 1).Error)
	assert.Equal(t, model.TableOccupied, table.Status)

	// The kitchen sees the order; it contains a kitchen-station line.
	w = env.request(t, "GET", "/api/orders", cookToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var kitchenOrders []model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kitchenOrders))
	require.Len(t, kitchenOrders, 1)

	// Billing is refused while lines are not delivered yet.
	w = env.request(t, "GET", "/api/tables/1/total", waiterToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "precondition_failed")

	// The kitchen readies each line and the waiter delivers it.
	for _, line := range order.Lines {
		w = env.request(t, "PATCH", fmt.Sprintf("/api/order-lines/%d", line.ID), cookToken,
			gin.H{"status": "ready"})
		require.Equal(t, http.StatusOK, w.Code)
		w = env.request(t, "PATCH", fmt.Sprintf("/api/order-lines/%d", line.ID), waiterToken,
			gin.H{"status": "delivered"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Billing now succeeds with exact money: 2 x 9.50 + 1 x 3.25.
	w = env.request(t, "GET", "/api/tables/1/total", waiterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var totalResp struct {
		Total decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &totalResp))
	assert.True(t, totalResp.Total.Equal(decimal.RequireFromString("22.25")),
		"expected 22.25, got %s", totalResp.Total)

	// The waiter closes out the order.
	w = env.request(t, "PATCH", fmt.Sprintf("/api/orders/%d", order.ID), waiterToken,
		gin.H{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code)

	// Paid orders leave the active list.
	w = env.request(t, "GET", "/api/orders", waiterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active []model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	assert.Empty(t, active)

	// The manager closes the shift.
	w = env.request(t, "POST", fmt.Sprintf("/api/shifts/%d/close", shift.ID), managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Closing it again is refused.
	w = env.request(t, "POST", fmt.Sprintf("/api/shifts/%d/close", shift.ID), managerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "precondition_failed")
}

// TestEventFanout subscribes to the kitchen channel and verifies a new
// kitchen order is announced on it.
func TestEventFanout(t *testing.T) {
	env := setupEnv(t)

	managerToken, code := env.login(t, "ana")
	require.Equal(t, http.StatusOK, code)
	w := env.request(t, "POST", "/api/shifts/open", managerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	waiterToken, code := env.login(t, "maria")
	require.Equal(t, http.StatusOK, code)

	sub := env.hub.Subscribe(events.KitchenChannel)
	defer env.hub.Unsubscribe(events.KitchenChannel, sub)

	w = env.request(t, "POST", "/api/orders", waiterToken, gin.H{
		"tableId": 1,
		"lines":   []gin.H{{"menuItemId": 1, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	select {
	case ev := <-sub:
		assert.Equal(t, "new_item", ev.Type)
		assert.Equal(t, events.KitchenChannel, ev.Channel)
	default:
		t.Fatal("expected a kitchen event after order creation")
	}
}

func TestRouteProtection(t *testing.T) {
	env := setupEnv(t)

	managerToken, code := env.login(t, "ana")
	require.Equal(t, http.StatusOK, code)
	w := env.request(t, "POST", "/api/shifts/open", managerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	waiterToken, code := env.login(t, "maria")
	require.Equal(t, http.StatusOK, code)
	cookToken, code := env.login(t, "luis")
	require.Equal(t, http.StatusOK, code)

	// No token at all.
	w = env.request(t, "GET", "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The kitchen cannot create orders or open shifts.
	w = env.request(t, "POST", "/api/orders", cookToken, gin.H{"tableId": 1, "lines": []gin.H{}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.request(t, "POST", "/api/shifts/open", cookToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The waiter cannot manage shifts.
	w = env.request(t, "GET", "/api/shifts", waiterToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Any authenticated principal can read the menu.
	w = env.request(t, "GET", "/api/menu", cookToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
