package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
	Stack      string          `json:"stack"`
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

type fakeProgramService struct {
	programs map[uint]domain.Program
	startErr error
	endErr   error
	lastPage domain.PageQuery
}

func (f *fakeProgramService) CreateProgram(_ context.Context, p domain.Program) (domain.Program, error) {
	p.ID = 1
	p.IsActive = true
	return p, nil
}

func (f *fakeProgramService) ListPrograms(_ context.Context, q domain.PageQuery) ([]domain.Program, domain.Pagination, error) {
	f.lastPage = q
	return []domain.Program{{ID: 1, Name: "Gold"}}, domain.NewPagination(q, 1), nil
}

func (f *fakeProgramService) ToggleProgramStatus(_ context.Context, id uint) (domain.Program, error) {
	p, ok := f.programs[id]
	if !ok {
		return domain.Program{}, fmt.Errorf("s.repo.ToggleStatus -> %w", service.ErrProgramNotFound)
	}
	p.IsActive = !p.IsActive
	f.programs[id] = p
	return p, nil
}

func (f *fakeProgramService) GetProgramDetails(_ context.Context, id uint) (domain.ProgramDetails, error) {
	p, ok := f.programs[id]
	if !ok {
		return domain.ProgramDetails{}, service.ErrProgramNotFound
	}
	return domain.ProgramDetails{Program: p}, nil
}

func (f *fakeProgramService) StartNewCycle(_ context.Context, programID uint) (domain.Cycle, error) {
	if f.startErr != nil {
		return domain.Cycle{}, f.startErr
	}
	return domain.Cycle{ID: 10, ProgramID: programID, IsActive: true}, nil
}

func (f *fakeProgramService) EndCurrentCycle(_ context.Context, programID uint) (domain.CycleTransition, error) {
	if f.endErr != nil {
		return domain.CycleTransition{}, f.endErr
	}
	return domain.CycleTransition{
		Ended:   domain.Cycle{ID: 10, ProgramID: programID},
		Started: domain.Cycle{ID: 11, ProgramID: programID, IsActive: true},
	}, nil
}

func (f *fakeProgramService) GetProgramCycles(_ context.Context, programID uint, q domain.PageQuery) ([]domain.Cycle, domain.Pagination, error) {
	return []domain.Cycle{{ID: 10, TotalWinners: 3}}, domain.NewPagination(q, 1), nil
}

func (f *fakeProgramService) GetCycleDetails(_ context.Context, cycleID uint) (domain.CycleDetails, error) {
	return domain.CycleDetails{}, service.ErrCycleNotFound
}

func newProgramRouter(svc ProgramService) *gin.Engine {
	h := NewProgramHandler(svc)
	r := gin.New()
	r.POST("/programs", h.HandleCreateProgram)
	r.GET("/programs", h.HandleListPrograms)
	r.GET("/programs/:programId", h.HandleGetProgram)
	r.PATCH("/programs/:programId/status", h.HandleToggleProgramStatus)
	r.POST("/programs/:programId/start-cycle", h.HandleStartCycle)
	r.POST("/programs/:programId/end-cycle", h.HandleEndCycle)
	r.GET("/programs/:programId/cycles", h.HandleGetProgramCycles)
	r.GET("/cycles/:cycleId", h.HandleGetCycle)
	return r
}

func TestHandleCreateProgram(t *testing.T) {
	r := newProgramRouter(&fakeProgramService{})

	rec, env := do(t, r, http.MethodPost, "/programs", map[string]string{"name": "Gold 2024"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)

	var program domain.Program
	require.NoError(t, json.Unmarshal(env.Data, &program))
	assert.Equal(t, "Gold 2024", program.Name)
	assert.True(t, program.IsActive)

	rec, env = do(t, r, http.MethodPost, "/programs", map[string]string{"name": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "validation failed", env.Message)
	assert.Equal(t, []string{"name: cannot be blank"}, env.Errors)
}

func TestHandleListPrograms(t *testing.T) {
	svc := &fakeProgramService{}
	r := newProgramRouter(svc)

	rec, env := do(t, r, http.MethodGet, "/programs?page=2&limit=500&search=gold", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PageQuery{Page: 2, Limit: 100, Search: "gold"}, svc.lastPage)

	var page struct {
		Items      []domain.Program  `json:"items"`
		Pagination domain.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 100, page.Pagination.Limit)

	rec, _ = do(t, r, http.MethodGet, "/programs?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleToggleProgramStatus(t *testing.T) {
	r := newProgramRouter(&fakeProgramService{programs: map[uint]domain.Program{1: {ID: 1, IsActive: true}}})

	rec, env := do(t, r, http.MethodPatch, "/programs/1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "program deactivated", env.Message)

	rec, env = do(t, r, http.MethodPatch, "/programs/1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "program activated", env.Message)

	rec, env = do(t, r, http.MethodPatch, "/programs/2/status", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "program with id 2 not found", env.Message)

	rec, _ = do(t, r, http.MethodPatch, "/programs/abc/status", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, r, http.MethodPatch, "/programs/0/status", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStartCycle(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		message string
	}{
		{name: "started", want: http.StatusCreated, message: "cycle started"},
		{name: "missing program", err: fmt.Errorf("s.repo.StartCycle -> %w", service.ErrProgramNotFound), want: http.StatusNotFound, message: "program with id 1 not found"},
		{name: "inactive program", err: fmt.Errorf("s.repo.StartCycle -> r.dao.StartCycle -> %w", service.ErrProgramInactive), want: http.StatusBadRequest, message: service.ErrProgramInactive.Error()},
		{name: "active cycle exists", err: fmt.Errorf("s.repo.StartCycle -> %w", service.ErrActiveCycleExists), want: http.StatusBadRequest, message: service.ErrActiveCycleExists.Error()},
		{name: "database down", err: fmt.Errorf("s.repo.StartCycle -> %w", assert.AnError), want: http.StatusInternalServerError, message: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newProgramRouter(&fakeProgramService{startErr: tt.err})

			rec, env := do(t, r, http.MethodPost, "/programs/1/start-cycle", nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, tt.err == nil, env.Success)
		})
	}
}

func TestHandleErrorStack(t *testing.T) {
	r := newProgramRouter(&fakeProgramService{endErr: fmt.Errorf("s.repo.EndCycle -> %w", service.ErrNoActiveCycle)})

	rec, env := do(t, r, http.MethodPost, "/programs/1/end-cycle", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ErrNoActiveCycle.Error(), env.Message)
	assert.Equal(t, "s.repo.EndCycle -> "+service.ErrNoActiveCycle.Error(), env.Stack)
	assert.Equal(t, []string{}, env.Errors)

	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	_, env = do(t, r, http.MethodPost, "/programs/1/end-cycle", nil)
	assert.Empty(t, env.Stack)
}

func TestHandleEndCycle(t *testing.T) {
	r := newProgramRouter(&fakeProgramService{})

	rec, env := do(t, r, http.MethodPost, "/programs/1/end-cycle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var transition map[string]domain.Cycle
	require.NoError(t, json.Unmarshal(env.Data, &transition))
	assert.Equal(t, uint(10), transition["endedCycle"].ID)
	assert.Equal(t, uint(11), transition["newCycle"].ID)
}

func TestHandleGetCycleNotFound(t *testing.T) {
	r := newProgramRouter(&fakeProgramService{})

	rec, env := do(t, r, http.MethodGet, "/cycles/5", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "cycle with id 5 not found", env.Message)
}

func TestHandleHealthcheck(t *testing.T) {
	r := gin.New()
	r.GET("/", HandleHealthcheck)

	rec, env := do(t, r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}
