package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jusunglee/penzgtu-go/internal/models"
	"github.com/jusunglee/penzgtu-go/internal/upstream"
	"github.com/jusunglee/penzgtu-go/pkg/penzgtu"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

const metaJSON = `{
	"level": {
		"L1": {
			"title": "Level one",
			"form": {
				"F1": {
					"title": "Form one",
					"type": {
						"tt": {"years": [
							{"index": 1, "title": "2023", "groups": {"g1": "Group A"}},
							{"index": 2, "title": "2022", "groups": []}
						]},
						"att": {"streams": [{"title": "Winter", "groups": {"w1": "Group W"}}]}
					}
				}
			}
		}
	}
}`

// MockClient implements penzgtu.Client for testing and counts upstream calls
type MockClient struct {
	meta      *models.TimetableMeta
	week      *models.WeekNum
	timetable json.RawMessage
	err       error

	calls   int
	queries []models.TimetableQuery
}

func newMockClient(t *testing.T) *MockClient {
	t.Helper()
	var meta models.TimetableMeta
	require.NoError(t, json.Unmarshal([]byte(metaJSON), &meta))
	return &MockClient{
		meta:      &meta,
		week:      &models.WeekNum{WeekNum: 7},
		timetable: json.RawMessage(`{"group":"g1","data":{}}`),
	}
}

func (m *MockClient) GetTimetableMeta(ctx context.Context) (*models.TimetableMeta, error) {
	m.calls++
	return m.meta, m.err
}

func (m *MockClient) GetWeekNum(ctx context.Context) (*models.WeekNum, error) {
	m.calls++
	return m.week, m.err
}

func (m *MockClient) GetTimetable(ctx context.Context, q models.TimetableQuery) (json.RawMessage, error) {
	m.calls++
	m.queries = append(m.queries, q)
	return m.timetable, m.err
}

func newRouter(client penzgtu.Client) *mux.Router {
	r := mux.NewRouter()
	NewHandler(client, nil).RegisterRoutes(r)
	return r
}

// postJSON sends body to path and decodes the envelope
func postJSON(t *testing.T, r http.Handler, path, body string) Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serve(t, r, req)
}

func serve(t *testing.T, r http.Handler, req *http.Request) Response {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestIndex(t *testing.T) {
	r := newRouter(newMockClient(t))

	resp := serve(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, StatusOK, resp.Status)
	assert.Contains(t, resp.Message, "only POST requests are accepted")

	resp = postJSON(t, r, "/", "")
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, "Example timetable API.", resp.Message)
}

func TestMetaEndpoints(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want any
	}{
		{"levels", "/getLevels", `{}`, map[string]any{"L1": "Level one"}},
		{"forms", "/getForms", `{"level":"L1"}`, map[string]any{"F1": "Form one"}},
		{"types", "/getTypes", `{"level":"L1","form":"F1"}`, map[string]any{
			"tt":  "Расписание занятий",
			"att": "Промежуточная аттестация",
		}},
		{"years", "/getYears", `{"level":"L1","form":"F1","type":"tt"}`, map[string]any{"1": "2023", "2": "2022"}},
		{"streams", "/getStreams", `{"level":"L1","form":"F1","type":"att"}`, map[string]any{"Winter": "Winter"}},
		{"groups by year", "/getGroups", `{"level":"L1","form":"F1","type":"tt","year":1}`, map[string]any{"g1": "Group A"}},
		{"groups by stream", "/getGroups", `{"level":"L1","form":"F1","type":"att","stream":"Winter"}`, map[string]any{"w1": "Group W"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t)
			resp := postJSON(t, newRouter(client), tt.path, tt.body)

			assert.Equal(t, StatusOK, resp.Status, resp.Message)
			assert.Equal(t, tt.want, resp.Data)
			assert.Equal(t, 1, client.calls)
		})
	}
}

func TestFormEncodedBody(t *testing.T) {
	client := newMockClient(t)
	form := url.Values{"level": {"L1"}, "form": {"F1"}, "type": {"tt"}, "year": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/getGroups", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp := serve(t, newRouter(client), req)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"g1": "Group A"}, resp.Data)
}

func TestUsageErrorsSkipUpstream(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want string
	}{
		{"forms missing level", "/getForms", `{}`, "missing level"},
		{"forms zero level", "/getForms", `{"level":0}`, "missing level"},
		{"types missing level", "/getTypes", `{"form":"F1"}`, "missing level"},
		{"years missing level", "/getYears", `{"form":"F1","type":"tt"}`, "missing level"},
		{"streams missing level", "/getStreams", `{"type":"att"}`, "missing level"},
		{"groups missing level", "/getGroups", `{"type":"tt","year":"1"}`, "missing level"},
		{"timetable missing level", "/getTimetable", `{"form":"F1","type":"tt","year":"1","group":"g1"}`, "missing level"},
		{"types missing form", "/getTypes", `{"level":"L1"}`, "missing form"},
		{"years with att", "/getYears", `{"level":"L1","form":"F1","type":"att"}`, "/getYears is reserved for type=tt"},
		{"streams with tt", "/getStreams", `{"level":"L1","form":"F1","type":"tt"}`, "/getStreams is reserved for type=att"},
		{"groups with both", "/getGroups", `{"level":"L1","form":"F1","type":"tt","year":"1","stream":"Winter"}`, "type=tt requires year"},
		{"groups with neither", "/getGroups", `{"level":"L1","form":"F1","type":"tt"}`, "missing year/stream"},
		{"groups att with year", "/getGroups", `{"level":"L1","form":"F1","type":"att","year":"1"}`, "type=att requires stream"},
		{"timetable missing group", "/getTimetable", `{"level":"L1","form":"F1","type":"tt","year":"1"}`, "missing group"},
		{"invalid json", "/getForms", `{"level":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t)
			resp := postJSON(t, newRouter(client), tt.path, tt.body)

			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.want, resp.Message)
			assert.Nil(t, resp.Data)
			assert.Zero(t, client.calls, "upstream must not be called")
		})
	}
}

func TestNavigationFailures(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want string
	}{
		{"unknown level", "/getForms", `{"level":"L9"}`, `level "L9" not found`},
		{"unknown form", "/getTypes", `{"level":"L1","form":"F9"}`, `form "F9" not found`},
		{"empty groups", "/getGroups", `{"level":"L1","form":"F1","type":"tt","year":"2"}`, "No groups found for given parameters"},
		{"unknown year", "/getGroups", `{"level":"L1","form":"F1","type":"tt","year":"9"}`, "No groups found for given parameters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t)
			resp := postJSON(t, newRouter(client), tt.path, tt.body)

			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.want, resp.Message)
			assert.Equal(t, 1, client.calls)
		})
	}
}

func TestWeekNum(t *testing.T) {
	resp := postJSON(t, newRouter(newMockClient(t)), "/getWeekNum", "")
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"weeknum": float64(7)}, resp.Data)
}

func TestTimetable(t *testing.T) {
	client := newMockClient(t)
	resp := postJSON(t, newRouter(client), "/getTimetable",
		`{"level":"L1","form":"F1","type":"att","stream":"Winter","group":"w1"}`)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"group": "g1", "data": map[string]any{}}, resp.Data)
	require.Len(t, client.queries, 1)
	assert.Equal(t, models.TimetableQuery{
		Level: "L1", Form: "F1", Type: "att", Stream: "Winter", Group: "w1",
	}, client.queries[0])
}

func TestUpstreamFailures(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		err  error
		want string
	}{
		{"weeknum no data", "/getWeekNum", "", fmt.Errorf("getWeekNum: %w", penzgtu.ErrNoData),
			"PenzGTU API returned no errors, but data object contains no weeknum"},
		{"levels no data", "/getLevels", "", fmt.Errorf("getTimetableMeta: %w", penzgtu.ErrNoData),
			"PenzGTU API returned no errors, but data object contains no levels"},
		{"timetable no data", "/getTimetable", `{"level":"L1","form":"F1","type":"tt","year":"1","group":"g1"}`,
			fmt.Errorf("getTimetable: %w", penzgtu.ErrNoData),
			"PenzGTU API returned no errors, but data field is empty"},
		{"upstream error", "/getForms", `{"level":"L1"}`,
			fmt.Errorf("getTimetableMeta: %w", &upstream.Error{Code: "3", Desc: "Wrong signature"}),
			"3 -- Wrong signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t)
			client.err = tt.err
			resp := postJSON(t, newRouter(client), tt.path, tt.body)

			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.want, resp.Message)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	cfg := penzgtu.DefaultConfig()
	cfg.URL = addr
	r := newRouter(penzgtu.NewRemote(cfg, nil))

	for _, path := range []string{"/getLevels", "/getWeekNum"} {
		resp := postJSON(t, r, path, "")
		assert.Equal(t, StatusError, resp.Status, path)
		assert.Contains(t, resp.Message, upstream.ErrTransport.Error(), path)
	}
}

func TestUpstreamEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		switch r.PostForm.Get("method_name") {
		case penzgtu.MethodTimetableMeta:
			fmt.Fprintf(w, `{"status":"ok","data":%s}`, metaJSON)
		default:
			w.Write([]byte(`{"error":5,"desc":"Unknown method"}`))
		}
	}))
	defer srv.Close()

	cfg := penzgtu.DefaultConfig()
	cfg.URL = srv.URL
	r := newRouter(penzgtu.NewRemote(cfg, nil))

	resp := postJSON(t, r, "/getYears", `{"level":"L1","form":"F1","type":"tt"}`)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"1": "2023", "2": "2022"}, resp.Data)

	resp = postJSON(t, r, "/getWeekNum", "")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "5 -- Unknown method", resp.Message)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(newMockClient(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/getLevels", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
