package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/services"
)

type stubSelfCheckInService struct {
	stores     map[string]*models.Store
	toggleErr  error
	lastMember int64
	lastStore  int64
}

func (s *stubSelfCheckInService) Toggle(memberID, storeID int64) (*services.ToggleResult, error) {
	s.lastMember = memberID
	s.lastStore = storeID
	if s.toggleErr != nil {
		return nil, s.toggleErr
	}
	return &services.ToggleResult{
		Action:    services.ToggleActionCheckIn,
		Record:    &models.CheckInRecord{ID: 1, MemberID: memberID, StoreID: storeID},
		Member:    &models.Member{ID: memberID},
		Timestamp: time.Now(),
	}, nil
}

func (s *stubSelfCheckInService) ResolveStationStore(qrToken string, defaultStoreID int64) (*models.Store, error) {
	if qrToken == "" {
		if store, ok := s.stores["default"]; ok {
			return store, nil
		}
		return nil, services.ErrStationStoreNotFound
	}
	if store, ok := s.stores[qrToken]; ok {
		return store, nil
	}
	return nil, services.ErrStationStoreNotFound
}

func newToggleRequest(t *testing.T, body string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	req, err := http.NewRequest(http.MethodPost, "/api/v1/self-checkin", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return recorder, c
}

func TestSelfCheckInToggleEndpoint(t *testing.T) {
	t.Run("scan against a station token", func(t *testing.T) {
		stub := &stubSelfCheckInService{stores: map[string]*models.Store{
			"tok-a": {ID: 2, Name: "Uptown", IsActive: true},
		}}
		handler := NewSelfCheckInHandler(stub, 0)

		recorder, c := newToggleRequest(t, `{"member_id": 5, "qr_token": "tok-a"}`)
		handler.Toggle(c)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, int64(5), stub.lastMember)
		assert.Equal(t, int64(2), stub.lastStore)
		assert.Contains(t, recorder.Body.String(), `"action":"checkin"`)
	})

	t.Run("missing member id is a bad request", func(t *testing.T) {
		stub := &stubSelfCheckInService{stores: map[string]*models.Store{}}
		handler := NewSelfCheckInHandler(stub, 0)

		recorder, c := newToggleRequest(t, `{"qr_token": "tok-a"}`)
		handler.Toggle(c)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown station token", func(t *testing.T) {
		stub := &stubSelfCheckInService{stores: map[string]*models.Store{}}
		handler := NewSelfCheckInHandler(stub, 0)

		recorder, c := newToggleRequest(t, `{"member_id": 5, "qr_token": "tok-x"}`)
		handler.Toggle(c)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("unknown member", func(t *testing.T) {
		stub := &stubSelfCheckInService{
			stores:    map[string]*models.Store{"tok-a": {ID: 2}},
			toggleErr: services.ErrMemberForCheckInNotFound,
		}
		handler := NewSelfCheckInHandler(stub, 0)

		recorder, c := newToggleRequest(t, `{"member_id": 99, "qr_token": "tok-a"}`)
		handler.Toggle(c)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
