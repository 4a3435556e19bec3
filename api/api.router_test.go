package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agrosense-backend/internal/audit"
	"agrosense-backend/internal/auth"
	"agrosense-backend/internal/models"
	"agrosense-backend/internal/repository"
	"agrosense-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Minimal in-memory stores, just enough to drive the handlers.

type memReadings struct {
	readings []models.SensorReading
}

func (m *memReadings) Insert(_ context.Context, r *models.SensorReading) error {
	r.ID = primitive.NewObjectID()
	m.readings = append(m.readings, *r)
	return nil
}

func (m *memReadings) List(_ context.Context, _ int64) ([]models.SensorReading, error) {
	return m.readings, nil
}

func (m *memReadings) ListByDevice(_ context.Context, deviceID string, _ int64) ([]models.SensorReading, error) {
	var out []models.SensorReading
	for _, r := range m.readings {
		if r.DeviceID == deviceID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReadings) ListBySensorType(_ context.Context, _ models.SensorType, _ int64) ([]models.SensorReading, error) {
	return m.readings, nil
}

type memReports struct {
	reports []models.Report
}

func (m *memReports) Create(_ context.Context, r *models.Report) error {
	r.ID = primitive.NewObjectID()
	m.reports = append(m.reports, *r)
	return nil
}

func (m *memReports) List(_ context.Context, _ repository.ReportFilters) ([]models.Report, error) {
	out := []models.Report{}
	return append(out, m.reports...), nil
}

func (m *memReports) ListByUser(_ context.Context, userID string) ([]models.Report, error) {
	var out []models.Report
	for _, r := range m.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReports) ListNear(_ context.Context, _, _, _ float64, _ repository.ReportFilters) ([]models.Report, error) {
	out := []models.Report{}
	return append(out, m.reports...), nil
}

func (m *memReports) ListByDateRange(_ context.Context, _, _ time.Time, _ repository.ReportFilters) ([]models.Report, error) {
	out := []models.Report{}
	return append(out, m.reports...), nil
}

func (m *memReports) UpdateStatus(_ context.Context, id string, status models.ReportStatus, solutionDate *time.Time) (*models.Report, error) {
	for i := range m.reports {
		if m.reports[i].ID.Hex() == id {
			m.reports[i].Status = status
			if solutionDate != nil {
				m.reports[i].SolutionDate = solutionDate
			}
			out := m.reports[i]
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memUsers struct {
	users []models.User
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) List(_ context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range m.users {
		u.Password = ""
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) Get(_ context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID.Hex() == id {
			u.Password = ""
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			u.Password = ""
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, id string, update repository.UserUpdate) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID.Hex() == id {
			if update.Phone != nil {
				m.users[i].Phone = *update.Phone
			}
			if update.PasswordHash != nil {
				m.users[i].Password = *update.PasswordHash
			}
			out := m.users[i]
			out.Password = ""
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) SoftDelete(_ context.Context, id string, when time.Time) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID.Hex() == id {
			m.users[i].Status = false
			m.users[i].DeleteDate = &when
			out := m.users[i]
			out.Password = ""
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memHistory struct {
	entries []models.LoginHistory
}

func (m *memHistory) Append(_ context.Context, e *models.LoginHistory) error {
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memHistory) List(_ context.Context, _ int64) ([]models.LoginHistory, error) {
	return m.entries, nil
}

func (m *memHistory) ListByUser(_ context.Context, userID string, _ int64) ([]models.LoginHistory, error) {
	var out []models.LoginHistory
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memSessions struct {
	sessions map[string]time.Time
}

func (m *memSessions) Set(_ context.Context, userID string, expiresAt time.Time) error {
	m.sessions[userID] = expiresAt
	return nil
}

func (m *memSessions) Get(_ context.Context, userID string) (time.Time, error) {
	expiresAt, ok := m.sessions[userID]
	if !ok {
		return time.Time{}, repository.ErrNotFound
	}
	return expiresAt, nil
}

func (m *memSessions) Extend(_ context.Context, userID string, window time.Duration) (time.Time, error) {
	if _, ok := m.sessions[userID]; !ok {
		return time.Time{}, repository.ErrNotFound
	}
	expiresAt := time.Now().UTC().Add(window)
	m.sessions[userID] = expiresAt
	return expiresAt, nil
}

func newTestRouter() *Router {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	signer := auth.NewJWTSigner("router-test-secret", 15*time.Minute)
	svc := service.New(
		&memReadings{}, &memReports{}, &memUsers{},
		&memSessions{sessions: map[string]time.Time{}},
		hasher, signer, audit.New(&memHistory{}), 15*time.Minute,
	)
	return NewRouter(svc)
}

func doJSON(t *testing.T, router *Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSaveReadingEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/sensor/save", map[string]any{
		"deviceId": "esp32-01",
		"sensors": map[string]any{
			"airQuality":   map[string]any{"value": 180},
			"soilMoisture": map[string]any{"rawValue": 2048},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Sensors struct {
				AirQuality struct {
					RiskLevel string `json:"riskLevel"`
				} `json:"airQuality"`
				SoilMoisture struct {
					Percentage *float64 `json:"percentage"`
				} `json:"soilMoisture"`
			} `json:"sensors"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Alto", body.Data.Sensors.AirQuality.RiskLevel)
	require.NotNil(t, body.Data.Sensors.SoilMoisture.Percentage)
	assert.Equal(t, float64(50), *body.Data.Sensors.SoilMoisture.Percentage)
}

func TestSaveReadingMissingDeviceID(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/sensor/save", map[string]any{
		"sensors": map[string]any{
			"ambientHumidity": map[string]any{"value": 55},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveReadingBadTimestamp(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/sensor/save", map[string]any{
		"deviceId":  "esp32-01",
		"timestamp": "20/07/2023 12:00",
		"sensors": map[string]any{
			"ambientHumidity": map[string]any{"value": 55},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveReadingVoltageOnly(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/sensor/save", map[string]any{
		"deviceId": "esp32-01",
		"sensors": map[string]any{
			"voltage": map[string]any{"value": 3.3},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReadingsEmpty(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/sensor/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReadingsByUnknownDevice(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/sensor/device/esp32-99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateReportEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/reports/", map[string]any{
		"userId": "user-1",
		"location": map[string]any{
			"type":        "Point",
			"coordinates": []float64{-58.3816, -34.6037},
		},
		"data": map[string]any{"description": "flooded field"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, models.StatusPendiente, report.Status)
	assert.Equal(t, models.ReportComun, report.ReportType)
	assert.Nil(t, report.SolutionDate)
}

func TestListReportsEmptyReturnsOK(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/reports/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestNearQueryRequiresCoordinates(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/reports/near?longitude=-58.3816", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "longitude and latitude are required")
}

func TestDateRangeQueryRequiresBothDates(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/reports/date?startDate=2026-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateReportStatusEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/reports/", map[string]any{
		"userId": "user-1",
		"location": map[string]any{
			"type":        "Point",
			"coordinates": []float64{-58.3816, -34.6037},
		},
		"data": map[string]any{"description": "broken pump"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPatch, "/api/reports/"+created.ID.Hex(), map[string]any{
		"status": "RESUELTO",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.StatusResuelto, updated.Status)
	assert.NotNil(t, updated.SolutionDate)

	rec = doJSON(t, router, http.MethodPatch, "/api/reports/"+created.ID.Hex(), map[string]any{
		"status": "CERRADO",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateReportStatusNotFound(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPatch, "/api/reports/66f0c0ffee0000000000beef", map[string]any{
		"status": "EN_PROCESO",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/user", map[string]any{
		"name":     "Maria Fernandez",
		"username": "mfernandez",
		"password": "hunter2secret",
		"email":    "maria@example.com",
		"phone":    "+5491144445555",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2secret")

	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login-user", map[string]any{
		"email":    "maria@example.com",
		"password": "hunter2secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "mfernandez", result.User.Username)
	assert.NotContains(t, rec.Body.String(), "password")

	// Session endpoints now see an active session.
	rec = doJSON(t, router, http.MethodGet, "/api/auth/getTime/"+created.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/api/auth/update/"+created.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// And the attempt landed in the history.
	rec = doJSON(t, router, http.MethodGet, "/api/loginHistory/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maria@example.com")
}

func TestLoginBadCredentials(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login-user", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestSessionEndpointsWithoutSession(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/auth/getTime/none", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/api/auth/update/none", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginHistoryEmpty(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/loginHistory/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
