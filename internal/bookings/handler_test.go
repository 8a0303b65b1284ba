package bookings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

func newTestRouter(t *testing.T, opts ...Option) (http.Handler, *Ledger) {
	t.Helper()
	ledger, _ := newTestLedger(t, opts...)
	h := NewHandler(ledger, logging.Default())

	r := chi.NewRouter()
	r.Post("/bookings", h.Create)
	r.Get("/bookings", h.List)
	r.Post("/bookings/search", h.Search)
	r.Get("/bookings/{id}", h.Get)
	r.Patch("/bookings/{id}", h.Modify)
	r.Delete("/bookings/{id}", h.Cancel)
	r.Get("/stats", h.Stats)
	return r, ledger
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateThenGet(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/bookings", aliceFields())
	require.Equal(t, http.StatusCreated, w.Code)

	var created Booking
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "BK0001", created.ID)

	w = do(t, router, http.MethodGet, "/bookings/bk0001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got Booking
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, "Alice", got.Name)
}

func TestHandler_CreateValidationError(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/bookings", Fields{Name: "Bob", Guests: 2})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	var names []string
	for _, f := range resp.Fields {
		names = append(names, f.Field)
	}
	assert.Equal(t, []string{"contact", "date", "time"}, names)
}

func TestHandler_CreateMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateWrongTypeIsFieldError(t *testing.T) {
	router, ledger := newTestRouter(t)
	body := `{"name":"Alice","contact":"alice@example.com","date":"2025-06-02","time":"19:00","guests":"two"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "guests", resp.Fields[0].Field)
	assert.Equal(t, ReasonInvalidFormat, resp.Fields[0].Reason)
	assert.Equal(t, 0, ledger.Len())
}

func TestHandler_RejectsOversizedBody(t *testing.T) {
	router, ledger := newTestRouter(t)
	body := `{"name":"` + strings.Repeat("A", maxBodyBytes) + `"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, 0, ledger.Len())
}

func TestHandler_GetUnknown(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/bookings/BK0099", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CancelTwiceConflicts(t *testing.T) {
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/bookings", aliceFields()).Code)

	w := do(t, router, http.MethodDelete, "/bookings/BK0001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cancelled Booking
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cancelled))
	assert.Equal(t, StatusCancelled, cancelled.Status)

	w = do(t, router, http.MethodDelete, "/bookings/BK0001", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPatch, "/bookings/BK0001", map[string]any{"guests": 4})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_Modify(t *testing.T) {
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/bookings", aliceFields()).Code)

	w := do(t, router, http.MethodPatch, "/bookings/BK0001", map[string]any{"guests": 4, "special_requirements": "high chair"})
	require.Equal(t, http.StatusOK, w.Code)
	var b Booking
	require.NoError(t, json.NewDecoder(w.Body).Decode(&b))
	assert.Equal(t, 4, b.Guests)
	assert.Equal(t, "high chair", b.SpecialRequirements)
	assert.NotNil(t, b.ModifiedAt)
}

func TestHandler_ListAndSearch(t *testing.T) {
	router, _ := newTestRouter(t)
	bob := aliceFields()
	bob.Name = "Bob"
	for _, f := range []Fields{aliceFields(), bob} {
		require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/bookings", f).Code)
	}
	require.Equal(t, http.StatusOK, do(t, router, http.MethodDelete, "/bookings/BK0002", nil).Code)

	w := do(t, router, http.MethodGet, "/bookings?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Equal(t, 1, list.TotalCount)

	w = do(t, router, http.MethodGet, "/bookings?status=pending", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/bookings/search", SearchRequest{Query: "bob"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Equal(t, 1, list.TotalCount)
	assert.Equal(t, "BK0002", list.Bookings[0].ID)

	w = do(t, router, http.MethodPost, "/bookings/search", SearchRequest{})
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Equal(t, 0, list.TotalCount)
	assert.NotNil(t, list.Bookings)
}

func TestHandler_Stats(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	assert.Equal(t, float64(0), raw["total_bookings"])
	assert.Equal(t, float64(0), raw["success_rate"])
}

func TestHandler_ExhaustionMapsTo507(t *testing.T) {
	router, _ := newTestRouter(t, WithIDGenerator(NewIDGenerator(9999)))
	w := do(t, router, http.MethodPost, "/bookings", aliceFields())
	assert.Equal(t, http.StatusInsufficientStorage, w.Code)
}
