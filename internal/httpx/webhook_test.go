package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-shop-bot/internal/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeQueue struct {
	mu     sync.Mutex
	err    error
	got    []bot.Update
	traces []string
}

func (q *fakeQueue) Enqueue(_ context.Context, trace string, u bot.Update) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.got = append(q.got, u)
	q.traces = append(q.traces, trace)
	return nil
}

func (q *fakeQueue) updates() ([]bot.Update, []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.got, q.traces
}

func newServer(q *fakeQueue, secret string) *httptest.Server {
	r := NewRouter(nil)
	(&WebhookHandler{Updates: q, Secret: secret}).Register(r)
	return httptest.NewServer(r)
}

func post(t *testing.T, url, secret, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/updates", strings.NewReader(body))
	require.NoError(t, err)
	if secret != "" {
		req.Header.Set(SecretHeader, secret)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

const textBody = `{"update_id":"u1","from":{"id":500,"username":"ann"},"message":{"text":"/start"}}`

func TestHealthz(t *testing.T) {
	srv := newServer(&fakeQueue{}, "")
	defer srv.Close()
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestReadyz(t *testing.T) {
	var down atomic.Bool
	r := NewRouter(map[string]Check{
		"redis": func(context.Context) error {
			if down.Load() {
				return errors.New("connection refused")
			}
			return nil
		},
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	down.Store(true)
	res, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "connection refused", body["redis"])
}

func TestWebhook_Queues(t *testing.T) {
	q := &fakeQueue{}
	srv := newServer(q, "s3cret")
	defer srv.Close()

	res := post(t, srv.URL, "s3cret", textBody)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	got, traces := q.updates()
	require.Len(t, got, 1)
	assert.Equal(t, int64(500), got[0].From.ID)
	assert.Equal(t, "/start", got[0].Message.Text)
	assert.NotEmpty(t, traces[0], "request id becomes the trace")
}

func TestWebhook_AssignsMissingID(t *testing.T) {
	q := &fakeQueue{}
	srv := newServer(q, "")
	defer srv.Close()

	res := post(t, srv.URL, "", `{"from":{"id":5},"callback_query":{"id":"c","data":"menu"}}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	got, _ := q.updates()
	require.Len(t, got, 1)
	assert.Equal(t, got[0].ID, body["update_id"])
	assert.Len(t, body["update_id"], 36)
}

func TestWebhook_Rejects(t *testing.T) {
	q := &fakeQueue{}
	srv := newServer(q, "s3cret")
	defer srv.Close()

	assert.Equal(t, http.StatusUnauthorized, post(t, srv.URL, "wrong", textBody).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, post(t, srv.URL, "", textBody).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL, "s3cret", `{`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL, "s3cret", `{"from":{"id":1}}`).StatusCode)
	got, _ := q.updates()
	assert.Empty(t, got)
}

func TestWebhook_DispatcherErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{bot.ErrThrottled, http.StatusOK},
		{bot.ErrBusy, http.StatusServiceUnavailable},
		{bot.ErrStopped, http.StatusServiceUnavailable},
	}
	for _, c := range cases {
		srv := newServer(&fakeQueue{err: c.err}, "")
		res := post(t, srv.URL, "", textBody)
		assert.Equal(t, c.code, res.StatusCode, c.err.Error())
		srv.Close()
	}
}
