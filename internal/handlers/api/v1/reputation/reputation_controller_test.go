package reputation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meritboard/internal/models"
	"meritboard/internal/response"
	"meritboard/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReputationService implements services.ReputationService.
type fakeReputationService struct {
	recordFn  func(ctx context.Context, req *services.RecordReputationRequest) (*models.Repute, error)
	historyFn func(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*services.ReputeView], error)
}

func (f *fakeReputationService) RecordChange(ctx context.Context, req *services.RecordReputationRequest) (*models.Repute, error) {
	if f.recordFn != nil {
		return f.recordFn(ctx, req)
	}
	return &models.Repute{}, nil
}

func (f *fakeReputationService) AssignByModerator(ctx context.Context, req *services.ModeratorAdjustmentRequest) (*models.Repute, error) {
	return &models.Repute{}, nil
}

func (f *fakeReputationService) GetHistory(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*services.ReputeView], error) {
	if f.historyFn != nil {
		return f.historyFn(ctx, userID, params)
	}
	return &models.PaginatedResponse[*services.ReputeView]{}, nil
}

func (f *fakeReputationService) GetReputation(ctx context.Context, userID int64) (int, error) {
	return 345, nil
}

func (f *fakeReputationService) GetDailyUpvoteReputation(ctx context.Context, userID int64, day time.Time) (int, error) {
	return 150, nil
}

func (f *fakeReputationService) ExplanationSnippet(repute *models.Repute) string { return "" }

func newTestRouter(svc services.ReputationService) http.Handler {
	logger := zap.NewNop()
	controller := NewReputationController(
		&services.ServiceCollection{Reputation: svc},
		logger,
		response.NewBuilder(logger),
	)

	r := chi.NewRouter()
	r.Get("/users/{userID}/reputation", controller.GetReputation)
	r.Get("/users/{userID}/reputation/today", controller.GetDailyUpvoteReputation)
	r.Post("/reputation", controller.RecordChange)
	return r
}

func TestReputationController_GetReputation(t *testing.T) {
	router := newTestRouter(&fakeReputationService{})

	t.Run("returns the running value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/7/reputation", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"reputation":345`)
	})

	t.Run("rejects a non-numeric user id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/abc/reputation", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReputationController_GetDailyUpvoteReputation(t *testing.T) {
	router := newTestRouter(&fakeReputationService{})

	t.Run("defaults to today", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/7/reputation/today", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"earned":150`)
	})

	t.Run("rejects a malformed day", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/7/reputation/today?day=25-08-2026", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")
	})
}

func TestReputationController_RecordChange(t *testing.T) {
	t.Run("maps business errors to their status", func(t *testing.T) {
		svc := &fakeReputationService{
			recordFn: func(ctx context.Context, req *services.RecordReputationRequest) (*models.Repute, error) {
				return nil, services.NewBusinessError("daily reputation cap of 200 reached", "DAILY_CAP_REACHED")
			},
		}
		router := newTestRouter(svc)

		body := `{"user_id":7,"question_id":42,"positive":10,"reputation_type":1}`
		req := httptest.NewRequest(http.MethodPost, "/reputation", strings.NewReader(body))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "DAILY_CAP_REACHED")
	})

	t.Run("created entry comes back with a 201", func(t *testing.T) {
		svc := &fakeReputationService{
			recordFn: func(ctx context.Context, req *services.RecordReputationRequest) (*models.Repute, error) {
				require.Equal(t, int64(7), req.UserID)
				return &models.Repute{ID: 101, UserID: 7, Positive: 10, Reputation: 11}, nil
			},
		}
		router := newTestRouter(svc)

		body := `{"user_id":7,"question_id":42,"positive":10,"reputation_type":1}`
		req := httptest.NewRequest(http.MethodPost, "/reputation", strings.NewReader(body))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":101`)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		router := newTestRouter(&fakeReputationService{})

		req := httptest.NewRequest(http.MethodPost, "/reputation", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
