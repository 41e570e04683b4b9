package handlers

import (
	"context"
	"net/http"
	"time"

	"thermowatch/internal/models"
	"thermowatch/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	principal     models.Principal
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (models.Principal, error) {
	m.lastParseToken = token
	return m.principal, m.parseErr
}

type mockThresholds struct {
	current    models.ThresholdSetting
	currentOK  bool
	list       []models.ThresholdSetting
	recorded   models.ThresholdSetting
	err        error
	lastValue  float64
	lastNote   string
	lastID     string
	lastCaller models.Principal
	calls      int
}

func (m *mockThresholds) Current(ctx context.Context) (models.ThresholdSetting, bool, error) {
	m.calls++
	return m.current, m.currentOK, m.err
}
func (m *mockThresholds) Record(ctx context.Context, p models.Principal, value float64, note string) (models.ThresholdSetting, error) {
	m.calls++
	m.lastCaller, m.lastValue, m.lastNote = p, value, note
	return m.recorded, m.err
}
func (m *mockThresholds) List(ctx context.Context) ([]models.ThresholdSetting, error) {
	m.calls++
	return m.list, m.err
}
func (m *mockThresholds) Remove(ctx context.Context, p models.Principal, id string) error {
	m.calls++
	m.lastCaller, m.lastID = p, id
	return m.err
}
func (m *mockThresholds) Clear(ctx context.Context, p models.Principal) error {
	m.calls++
	m.lastCaller = p
	return m.err
}

type mockReadings struct {
	page       models.ReadingPage
	latest     models.SensorReading
	latestOK   bool
	err        error
	lastQuery  service.PageQuery
	lastID     string
	lastCaller models.Principal
	calls      int
}

func (m *mockReadings) List(ctx context.Context, q service.PageQuery) (models.ReadingPage, error) {
	m.calls++
	m.lastQuery = q
	return m.page, m.err
}
func (m *mockReadings) Latest(ctx context.Context) (models.SensorReading, bool, error) {
	m.calls++
	return m.latest, m.latestOK, m.err
}
func (m *mockReadings) Remove(ctx context.Context, p models.Principal, id string) error {
	m.calls++
	m.lastCaller, m.lastID = p, id
	return m.err
}
func (m *mockReadings) Clear(ctx context.Context, p models.Principal) error {
	m.calls++
	m.lastCaller = p
	return m.err
}

type mockIngestion struct {
	eval    models.Evaluation
	err     error
	lastRaw models.RawReading
	calls   int
}

func (m *mockIngestion) Evaluate(ctx context.Context, raw models.RawReading) (models.Evaluation, error) {
	m.calls++
	m.lastRaw = raw
	return m.eval, m.err
}
func (m *mockIngestion) Run(ctx context.Context, in <-chan models.RawReading) {}

type mockLive struct {
	status models.LiveStatus
	err    error
}

func (m *mockLive) Status(ctx context.Context) (models.LiveStatus, error) {
	return m.status, m.err
}

type mockEventLog struct {
	resp     []models.AuditEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	calls    int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.AuditEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
