package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/testutil"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newAPIClient(t *testing.T, companyId string, isAdmin bool) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	token, err := utils.JwtGenerate(1, "tester", companyId, isAdmin)
	require.NoError(t, err)
	return &apiClient{t: t, router: newRouter(config.GetLogger()), token: token}
}

func (a *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestVentureLifecycleOverHTTP(t *testing.T) {
	testutil.OpenDB(t)
	admin := newAPIClient(t, "", true)

	w := admin.do(http.MethodPost, "/ventures", map[string]any{"name": "Acme", "industry": "software", "capital": "50000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	venture := decode[map[string]any](t, w)
	id := venture["id"].(string)
	require.Equal(t, "pending", venture["status"])

	w = admin.do(http.MethodPost, "/ventures/"+id+"/transition", map[string]string{"status": "packaged"})
	require.Equal(t, http.StatusConflict, w.Code)

	w = admin.do(http.MethodPost, "/ventures/"+id+"/transition", map[string]string{"status": "active"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	owner := newAPIClient(t, id, false)
	w = owner.do(http.MethodPost, "/ventures/"+id+"/contracts", map[string]any{
		"title":        "Website build contract",
		"counterparty": "Globex",
		"direction":    "sales",
		"amount":       "80000",
		"start_date":   "2026-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Contract struct {
			ID int `json:"id"`
		} `json:"contract"`
		Effects []struct {
			Module string `json:"module"`
			Action string `json:"action"`
		} `json:"effects"`
	}](t, w)
	require.Len(t, created.Effects, 7)
	require.Equal(t, "relationships", created.Effects[0].Module)
	require.Equal(t, "milestones", created.Effects[6].Module)

	w = owner.do(http.MethodPost, "/ventures/"+id+"/contracts", map[string]any{
		"title": "x", "counterparty": "y", "direction": "barter",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "sales, procurement, outsourcing, partnership")

	w = owner.do(http.MethodPost, "/ventures/"+id+"/transactions", map[string]any{
		"amount": "10600", "direction": "income", "counterparty": "Globex", "transaction_date": "2026-02-10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = owner.do(http.MethodGet, "/ventures/"+id+"/relationships?tag=client", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rels := decode[[]map[string]any](t, w)
	require.Len(t, rels, 1)

	w = owner.do(http.MethodGet, "/ventures/"+id+"/relationships/"+strconv.Itoa(int(rels[0]["id"].(float64))), nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Notes []struct {
			Line string `json:"line"`
		} `json:"notes"`
	}](t, w)
	require.Len(t, detail.Notes, 2)
	require.Equal(t, "received 10600.00 on 2026-02-10", detail.Notes[1].Line)

	w = owner.do(http.MethodGet, "/ventures/"+id+"/milestones?category=finance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	timeline := decode[map[string]any](t, w)
	require.EqualValues(t, 1, timeline["total"])

	w = owner.do(http.MethodGet, "/ventures/"+id+"/milestones/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "timeline-"+id)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	rows, err := f.GetRows("Timeline")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.NoError(t, f.Close())

	w = owner.do(http.MethodGet, "/ventures/"+id+"/events/contract/"+strconv.Itoa(created.Contract.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "PENDING", decode[map[string]any](t, w)["publish_status"])

	w = owner.do(http.MethodGet, "/ventures/"+id+"/events/invoice/1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = owner.do(http.MethodGet, "/ventures/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]map[string]any](t, w), 2)
}

func TestVentureRoutesEnforceScope(t *testing.T) {
	testutil.OpenDB(t)
	_, venture := testutil.NewVenture(t, "Scoped")
	stranger := newAPIClient(t, "someone-else", false)

	require.Equal(t, http.StatusForbidden, stranger.do(http.MethodGet, "/ventures/"+venture.ID.String(), nil).Code)
	require.Equal(t, http.StatusForbidden, stranger.do(http.MethodGet, "/ventures", nil).Code)

	admin := newAPIClient(t, "", true)
	require.Equal(t, http.StatusNotFound, admin.do(http.MethodGet, "/ventures/not-a-uuid", nil).Code)
	require.Equal(t, http.StatusNotFound, admin.do(http.MethodGet, "/nowhere", nil).Code)
	require.Equal(t, http.StatusOK, admin.do(http.MethodGet, "/metrics", nil).Code)
}

func TestErrorStatus(t *testing.T) {
	_, dateErr := utils.ParseDate("03/01/2026")
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("venture x: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{"illegal transition", &models.TransitionError{From: models.VentureStatusTerminated, To: models.VentureStatusActive}, http.StatusConflict},
		{"direction", &models.DirectionError{Value: "barter"}, http.StatusBadRequest},
		{"unknown status", fmt.Errorf("%w %q", models.ErrInvalidStatus, "gone"), http.StatusBadRequest},
		{"input", utils.InputErrorf("name is required"), http.StatusBadRequest},
		{"wrapped input", fmt.Errorf("owner contact: %w", utils.InputErrorf("email is not valid")), http.StatusBadRequest},
		{"date", dateErr, http.StatusBadRequest},
		{"store", errors.New("dial tcp 10.0.0.3:3306: connection refused"), http.StatusInternalServerError},
		{"injected", testutil.ErrInjected, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, errorStatus(tc.err))
		})
	}
}

func TestStoreFailureIsServerError(t *testing.T) {
	db := testutil.OpenDB(t)
	_, venture := testutil.NewVenture(t, "Broken store")
	id := venture.ID.String()
	owner := newAPIClient(t, id, false)
	testutil.FailCreatesOn(t, db, "contracts")

	w := owner.do(http.MethodPost, "/ventures/"+id+"/contracts", map[string]any{
		"title": "Website build contract", "counterparty": "Globex", "direction": "sales", "amount": "80000",
	})
	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())

	w = owner.do(http.MethodPost, "/ventures/"+id+"/contracts", map[string]any{
		"title": "Website build contract", "counterparty": "Globex", "direction": "sales", "amount": "-1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}
