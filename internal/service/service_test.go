package service

import (
	"time"

	"agrosense-backend/internal/audit"
	"agrosense-backend/internal/auth"

	"golang.org/x/crypto/bcrypt"
)

// testEnv bundles a service wired onto in-memory fakes.
type testEnv struct {
	svc      *Service
	readings *fakeReadingRepo
	reports  *fakeReportRepo
	users    *fakeUserRepo
	history  *fakeHistoryRepo
	sessions *fakeSessionStore
}

func newTestEnv() *testEnv {
	env := &testEnv{
		readings: &fakeReadingRepo{},
		reports:  &fakeReportRepo{},
		users:    &fakeUserRepo{},
		history:  &fakeHistoryRepo{},
		sessions: newFakeSessionStore(),
	}

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	signer := auth.NewJWTSigner("test-secret", 15*time.Minute)
	env.svc = New(env.readings, env.reports, env.users, env.sessions,
		hasher, signer, audit.New(env.history), 15*time.Minute)
	return env
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
