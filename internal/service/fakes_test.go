package service

import (
	"context"
	"math"
	"sort"
	"time"

	"agrosense-backend/internal/models"
	"agrosense-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the service tests.

type fakeReadingRepo struct {
	readings []models.SensorReading
}

func (f *fakeReadingRepo) Insert(_ context.Context, reading *models.SensorReading) error {
	reading.ID = primitive.NewObjectID()
	f.readings = append(f.readings, *reading)
	return nil
}

func (f *fakeReadingRepo) List(_ context.Context, limit int64) ([]models.SensorReading, error) {
	return capReadings(f.readings, limit), nil
}

func (f *fakeReadingRepo) ListByDevice(_ context.Context, deviceID string, limit int64) ([]models.SensorReading, error) {
	var out []models.SensorReading
	for _, r := range f.readings {
		if r.DeviceID == deviceID {
			out = append(out, r)
		}
	}
	return capReadings(out, limit), nil
}

func (f *fakeReadingRepo) ListBySensorType(_ context.Context, sensorType models.SensorType, limit int64) ([]models.SensorReading, error) {
	var out []models.SensorReading
	for _, r := range f.readings {
		if hasSensor(&r.Sensors, sensorType) {
			out = append(out, r)
		}
	}
	return capReadings(out, limit), nil
}

func hasSensor(s *models.SensorSet, t models.SensorType) bool {
	switch t {
	case models.SensorAmbientHumidity:
		return s.AmbientHumidity != nil
	case models.SensorAmbientTemperature:
		return s.AmbientTemperature != nil
	case models.SensorAirQuality:
		return s.AirQuality != nil
	case models.SensorVoltage:
		return s.Voltage != nil
	case models.SensorSoilMoisture:
		return s.SoilMoisture != nil
	}
	return false
}

func capReadings(in []models.SensorReading, limit int64) []models.SensorReading {
	out := append([]models.SensorReading{}, in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

type fakeReportRepo struct {
	reports []models.Report
}

func (f *fakeReportRepo) Create(_ context.Context, report *models.Report) error {
	report.ID = primitive.NewObjectID()
	f.reports = append(f.reports, *report)
	return nil
}

func (f *fakeReportRepo) List(_ context.Context, filters repository.ReportFilters) ([]models.Report, error) {
	return filterReports(f.reports, filters), nil
}

func (f *fakeReportRepo) ListByUser(_ context.Context, userID string) ([]models.Report, error) {
	var out []models.Report
	for _, r := range f.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReportRepo) ListNear(_ context.Context, longitude, latitude, maxDistance float64, filters repository.ReportFilters) ([]models.Report, error) {
	type withDist struct {
		report models.Report
		dist   float64
	}
	var near []withDist
	for _, r := range filterReports(f.reports, filters) {
		if len(r.Location.Coordinates) != 2 {
			continue
		}
		d := haversineMeters(latitude, longitude, r.Location.Coordinates[1], r.Location.Coordinates[0])
		if d <= maxDistance {
			near = append(near, withDist{r, d})
		}
	}
	sort.Slice(near, func(i, j int) bool { return near[i].dist < near[j].dist })

	out := []models.Report{}
	for _, n := range near {
		out = append(out, n.report)
	}
	return out, nil
}

func (f *fakeReportRepo) ListByDateRange(_ context.Context, start, end time.Time, filters repository.ReportFilters) ([]models.Report, error) {
	var out []models.Report
	for _, r := range filterReports(f.reports, filters) {
		if !r.CreateDate.Before(start) && !r.CreateDate.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReportRepo) UpdateStatus(_ context.Context, id string, status models.ReportStatus, solutionDate *time.Time) (*models.Report, error) {
	for i := range f.reports {
		if f.reports[i].ID.Hex() == id {
			f.reports[i].Status = status
			if solutionDate != nil {
				f.reports[i].SolutionDate = solutionDate
			}
			updated := f.reports[i]
			return &updated, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReportRepo) get(id string) *models.Report {
	for i := range f.reports {
		if f.reports[i].ID.Hex() == id {
			return &f.reports[i]
		}
	}
	return nil
}

func filterReports(in []models.Report, filters repository.ReportFilters) []models.Report {
	out := []models.Report{}
	for _, r := range in {
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.ReportType != "" && r.ReportType != filters.ReportType {
			continue
		}
		out = append(out, r)
	}
	return out
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}

type fakeUserRepo struct {
	users []models.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		u.Password = ""
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) Get(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID.Hex() == id {
			u.Password = ""
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			u.Password = ""
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, id string, update repository.UserUpdate) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID.Hex() != id {
			continue
		}
		u := &f.users[i]
		if update.Name != nil {
			u.Name = *update.Name
		}
		if update.Username != nil {
			u.Username = *update.Username
		}
		if update.PasswordHash != nil {
			u.Password = *update.PasswordHash
		}
		if update.Email != nil {
			u.Email = *update.Email
		}
		if update.Phone != nil {
			u.Phone = *update.Phone
		}
		if update.Role != nil {
			u.Role = *update.Role
		}
		if update.Status != nil {
			u.Status = *update.Status
		}
		out := *u
		out.Password = ""
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id string, when time.Time) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID.Hex() == id {
			f.users[i].Status = false
			f.users[i].DeleteDate = &when
			out := f.users[i]
			out.Password = ""
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) storedHash(id string) string {
	for _, u := range f.users {
		if u.ID.Hex() == id {
			return u.Password
		}
	}
	return ""
}

type fakeHistoryRepo struct {
	entries []models.LoginHistory
}

func (f *fakeHistoryRepo) Append(_ context.Context, entry *models.LoginHistory) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) List(_ context.Context, limit int64) ([]models.LoginHistory, error) {
	return capHistory(f.entries, limit), nil
}

func (f *fakeHistoryRepo) ListByUser(_ context.Context, userID string, limit int64) ([]models.LoginHistory, error) {
	var out []models.LoginHistory
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return capHistory(out, limit), nil
}

func capHistory(in []models.LoginHistory, limit int64) []models.LoginHistory {
	out := append([]models.LoginHistory{}, in...)
	sort.Slice(out, func(i, j int) bool { return out[i].LoginAt.After(out[j].LoginAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

type fakeSessionStore struct {
	sessions map[string]time.Time
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]time.Time{}}
}

func (f *fakeSessionStore) Set(_ context.Context, userID string, expiresAt time.Time) error {
	f.sessions[userID] = expiresAt
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, userID string) (time.Time, error) {
	expiresAt, ok := f.sessions[userID]
	if !ok {
		return time.Time{}, repository.ErrNotFound
	}
	return expiresAt, nil
}

func (f *fakeSessionStore) Extend(_ context.Context, userID string, window time.Duration) (time.Time, error) {
	if _, ok := f.sessions[userID]; !ok {
		return time.Time{}, repository.ErrNotFound
	}
	expiresAt := time.Now().UTC().Add(window)
	f.sessions[userID] = expiresAt
	return expiresAt, nil
}
