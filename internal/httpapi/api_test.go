package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaicatering/kai/internal/common"
	"github.com/kaicatering/kai/internal/fulfillment"
	"github.com/kaicatering/kai/internal/model"
	"github.com/kaicatering/kai/internal/recommend"
)

// stubRecommender serves canned recommendation results.
type stubRecommender struct {
	result  recommend.Result
	err     error
	stream  []recommend.StreamResult
	message string
}

func (s *stubRecommender) Recommend(_ context.Context, message string) (recommend.Result, error) {
	s.message = message
	return s.result, s.err
}

func (s *stubRecommender) RecommendStream(_ context.Context, message string) (<-chan recommend.StreamResult, error) {
	s.message = message
	if s.err != nil {
		return nil, s.err
	}
	out := make(chan recommend.StreamResult, len(s.stream))
	for _, res := range s.stream {
		out <- res
	}
	close(out)
	return out, nil
}

// stubOrders and stubNotifier back a real fulfillment pipeline.
type stubOrders struct{ err error }

func (s *stubOrders) CreateOrder(_ context.Context, order model.Order) (*model.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	order.ID = "ord-1"
	return &order, nil
}

func (s *stubOrders) GetOrderByID(_ context.Context, _ string) (*model.Order, error) {
	return nil, common.ErrNotFound
}

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) Send(_ context.Context, _, _ string) error {
	s.calls++
	return s.err
}

func newTestAPI(recommender Recommender, orders *stubOrders, notifier *stubNotifier) *API {
	if orders == nil {
		orders = &stubOrders{}
	}
	if notifier == nil {
		notifier = &stubNotifier{}
	}
	return New(recommender, fulfillment.NewPipeline(orders, notifier, nil), nil)
}

func doRequest(t *testing.T, api *API, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	return rec
}

func braaiResult() recommend.Result {
	return recommend.Result{Set: model.RecommendationSet{Caterers: []model.Recommendation{{
		ID:          "c1",
		Name:        "Braai Bros",
		Location:    "Soweto",
		MatchReason: "bbq fits the request",
	}}}}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(&stubRecommender{}, nil, nil)

	rec := doRequest(t, api, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatHappyPath(t *testing.T) {
	stub := &stubRecommender{result: braaiResult()}
	api := newTestAPI(stub, nil, nil)

	rec := doRequest(t, api, http.MethodPost, "/api/chat", `{"message":"braai for 30"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "braai for 30", stub.message)

	var resp struct {
		Note     string                 `json:"note"`
		Caterers []model.Recommendation `json:"caterers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Caterers, 1)
	assert.Equal(t, "c1", resp.Caterers[0].ID)
	assert.Empty(t, resp.Note)
}

func TestChatHistoryVariant(t *testing.T) {
	stub := &stubRecommender{result: braaiResult()}
	api := newTestAPI(stub, nil, nil)

	body := `{"messages":[
		{"role":"user","content":"hi"},
		{"role":"assistant","content":"how can I help?"},
		{"role":"user","content":"vegan options for 12"}
	]}`
	rec := doRequest(t, api, http.MethodPost, "/api/chat", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vegan options for 12", stub.message, "last history entry wins")
}

func TestChatBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"message":`},
		{name: "empty message", body: `{"message":""}`},
		{name: "blank message", body: `{"message":"   "}`},
		{name: "empty history content", body: `{"messages":[{"role":"user","content":""}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(&stubRecommender{}, nil, nil)

			rec := doRequest(t, api, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestChatEmptyCatalogNote(t *testing.T) {
	stub := &stubRecommender{result: recommend.Result{
		Set:          model.RecommendationSet{Caterers: []model.Recommendation{}},
		EmptyCatalog: true,
	}}
	api := newTestAPI(stub, nil, nil)

	rec := doRequest(t, api, http.MethodPost, "/api/chat", `{"message":"anything"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, emptyCatalogNote, resp["note"])
	assert.Equal(t, []any{}, resp["caterers"])
}

func TestChatBackendFailure(t *testing.T) {
	genErr := common.NewGenerationError("nonconformant output", `{"oops":`, errors.New("decode failed"))
	api := newTestAPI(&stubRecommender{err: genErr}, nil, nil)

	rec := doRequest(t, api, http.MethodPost, "/api/chat", `{"message":"braai"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
	assert.Equal(t, `{"oops":`, resp["rawOutput"])
}

func TestChatStream(t *testing.T) {
	partial := recommend.Result{Set: model.RecommendationSet{Caterers: []model.Recommendation{}}}
	stub := &stubRecommender{stream: []recommend.StreamResult{
		{Result: partial},
		{Result: braaiResult()},
		{Result: braaiResult(), Final: true},
	}}
	api := newTestAPI(stub, nil, nil)

	rec := doRequest(t, api, http.MethodPost, "/api/chat/stream", `{"message":"braai"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	var lines []chatResponse
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		var line chatResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 3)

	first, ok := lines[0].Caterers.([]any)
	require.True(t, ok)
	assert.Empty(t, first)
	last, ok := lines[2].Caterers.([]any)
	require.True(t, ok)
	assert.Len(t, last, 1)
}

func TestChatStreamErrorLine(t *testing.T) {
	stub := &stubRecommender{stream: []recommend.StreamResult{
		{Result: braaiResult()},
		{Err: errors.New("stream cut"), Final: true},
	}}
	api := newTestAPI(stub, nil, nil)

	rec := doRequest(t, api, http.MethodPost, "/api/chat/stream", `{"message":"braai"}`)
	require.Equal(t, http.StatusOK, rec.Code, "headers are committed before the error arrives")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "stream cut")
}

func TestChatStreamEmptyMessage(t *testing.T) {
	api := newTestAPI(&stubRecommender{}, nil, nil)

	rec := doRequest(t, api, http.MethodPost, "/api/chat/stream", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func orderBody() string {
	return `{
		"userId": "u1",
		"catererId": "c1",
		"phoneNumber": "+27821234567",
		"eventDetails": {"event_name": "Year-end function", "guests": 40}
	}`
}

func TestOrderHappyPath(t *testing.T) {
	notifier := &stubNotifier{}
	api := newTestAPI(&stubRecommender{}, nil, notifier)

	rec := doRequest(t, api, http.MethodPost, "/api/order", orderBody())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, notifier.calls)

	var resp struct {
		Order   model.Order `json:"order"`
		State   string      `json:"state"`
		Warning string      `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(fulfillment.StateNotified), resp.State)
	assert.Equal(t, "ord-1", resp.Order.ID)
	assert.Empty(t, resp.Warning)
}

func TestOrderValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"userId":`},
		{name: "missing user id", body: `{"catererId":"c1","phoneNumber":"+27821234567","eventDetails":{"event_name":"x"}}`},
		{name: "missing caterer id", body: `{"userId":"u1","phoneNumber":"+27821234567","eventDetails":{"event_name":"x"}}`},
		{name: "missing event details", body: `{"userId":"u1","catererId":"c1","phoneNumber":"+27821234567"}`},
		{name: "missing event name", body: `{"userId":"u1","catererId":"c1","phoneNumber":"+27821234567","eventDetails":{"guests":5}}`},
		{name: "invalid phone number", body: `{"userId":"u1","catererId":"c1","phoneNumber":"0821234567","eventDetails":{"event_name":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &stubNotifier{}
			api := newTestAPI(&stubRecommender{}, nil, notifier)

			rec := doRequest(t, api, http.MethodPost, "/api/order", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, notifier.calls)
		})
	}
}

func TestOrderNotifyFailedIsPartialSuccess(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("carrier rejected")}
	api := newTestAPI(&stubRecommender{}, nil, notifier)

	rec := doRequest(t, api, http.MethodPost, "/api/order", orderBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Order   model.Order `json:"order"`
		State   string      `json:"state"`
		Warning string      `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(fulfillment.StateNotifyFailed), resp.State)
	assert.Equal(t, "ord-1", resp.Order.ID, "caller must learn the committed order id")
	assert.NotEmpty(t, resp.Warning)
}

func TestOrderPersistFailed(t *testing.T) {
	notifier := &stubNotifier{}
	api := newTestAPI(&stubRecommender{}, &stubOrders{err: errors.New("disk full")}, notifier)

	rec := doRequest(t, api, http.MethodPost, "/api/order", orderBody())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, notifier.calls)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(fulfillment.StatePersistFailed), resp["state"])
}

func TestMethodNotAllowed(t *testing.T) {
	api := newTestAPI(&stubRecommender{}, nil, nil)

	rec := doRequest(t, api, http.MethodGet, "/api/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
