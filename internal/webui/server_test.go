package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmdesk/internal/app/messaging"
	"dmdesk/internal/config"
	"dmdesk/internal/domain/dm"
	"dmdesk/internal/logging"
	"dmdesk/internal/observability"
	"dmdesk/internal/webui/handlers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type senderStub struct {
	mu     sync.Mutex
	calls  int
	handle string
	body   string
	ctxErr error
	result dm.Result
}

func (s *senderStub) Process(ctx context.Context, handle, body string) dm.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.handle = handle
	s.body = body
	s.ctxErr = ctx.Err()
	return s.result
}

func newTestServer(t *testing.T, sender *senderStub, mutate ...func(*config.ServerConfig)) http.Handler {
	t.Helper()
	cfg := config.Default().Server
	cfg.Debug = true
	for _, m := range mutate {
		m(&cfg)
	}
	srv, err := NewServer(cfg, Dependencies{
		Sender:        sender,
		Status:        messaging.ConnectionStatus{Connected: true, Handle: "operator", Display: "@operator"},
		Observability: observability.New(observability.DefaultConfig(), &bytes.Buffer{}),
		Logger:        logging.Nop(),
		Version:       "test",
	})
	require.NoError(t, err)
	return srv.Handler()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestNewServerRequiresSender(t *testing.T) {
	_, err := NewServer(config.Default().Server, Dependencies{})
	assert.Error(t, err)
}

func TestIndexRendersForm(t *testing.T) {
	h := newTestServer(t, &senderStub{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, "Twitter Direct Message Tool", doc.Find(".top-bar h1").Text())
	assert.Equal(t, "Connected as @operator", doc.Find("#connection-info").Text())
	assert.False(t, doc.Find("#connection-info").HasClass("disconnected"))
	placeholder, _ := doc.Find("input#username").Attr("placeholder")
	assert.Equal(t, "elonmusk", placeholder)
	assert.Equal(t, 1, doc.Find("textarea#message").Length())
	assert.Equal(t, "Send Message", doc.Find("#send-button").Text())
	assert.Equal(t, "Ready to send", doc.Find("#status").Text())
}

func TestSendFormRendersResultVerbatim(t *testing.T) {
	sender := &senderStub{result: dm.Result{
		Kind: dm.KindDelivered,
		Text: "✅ Message sent successfully\n\nUser: @alice\nUser ID: 42\n\nMessage:\n<b>hi</b>",
	}}
	h := newTestServer(t, sender)

	form := url.Values{"username": {"@alice"}, "message": {"<b>hi</b>"}}
	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<b>hi</b>")
	doc := parseHTML(t, rec)
	assert.Equal(t, sender.result.Text, doc.Find("#status").Text())
	assert.True(t, doc.Find("#status").HasClass("delivered"))
	value, _ := doc.Find("input#username").Attr("value")
	assert.Equal(t, "@alice", value)
	assert.Equal(t, "<b>hi</b>", doc.Find("textarea#message").Text())
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "@alice", sender.handle)
	assert.NoError(t, sender.ctxErr)
}

func TestSendFormFailureClass(t *testing.T) {
	sender := &senderStub{result: dm.Result{Kind: dm.KindAccountNotFound, Text: "❌ User @ghost not found"}}
	h := newTestServer(t, sender)

	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader("username=ghost&message=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	doc := parseHTML(t, serve(h, req))

	assert.True(t, doc.Find("#status").HasClass("failed"))
	assert.Equal(t, "❌ User @ghost not found", doc.Find("#status").Text())
}

func postForm(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader("username=alice&message=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestSendFormRejectsCrossSiteSubmissions(t *testing.T) {
	cases := map[string]map[string]string{
		"foreign origin":       {"Origin": "https://evil.example"},
		"opaque origin":        {"Origin": "null"},
		"scheme mismatch":      {"Origin": "https://example.com"},
		"foreign referer":      {"Referer": "https://evil.example/page"},
		"cross-site fetch":     {"Sec-Fetch-Site": "cross-site"},
		"same-site other port": {"Origin": "http://example.com:8080", "Sec-Fetch-Site": "same-site"},
	}
	for name, headers := range cases {
		t.Run(name, func(t *testing.T) {
			sender := &senderStub{result: dm.Result{Kind: dm.KindDelivered, Text: "sent"}}
			h := newTestServer(t, sender)

			rec := serve(h, postForm(headers))

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, 0, sender.calls)
		})
	}
}

func TestSendFormAcceptsSameOriginSubmissions(t *testing.T) {
	cases := map[string]map[string]string{
		"same origin":        {"Origin": "http://example.com"},
		"same referer":       {"Referer": "http://example.com/"},
		"same-origin fetch":  {"Sec-Fetch-Site": "same-origin"},
		"allowed origin":     {"Origin": "https://ops.example.com"},
		"no browser headers": {},
	}
	for name, headers := range cases {
		t.Run(name, func(t *testing.T) {
			sender := &senderStub{result: dm.Result{Kind: dm.KindDelivered, Text: "sent"}}
			h := newTestServer(t, sender, func(cfg *config.ServerConfig) {
				cfg.AllowedOrigins = []string{"https://ops.example.com/"}
			})

			rec := serve(h, postForm(headers))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 1, sender.calls)
		})
	}
}

func TestAPIMessagesStatusCodes(t *testing.T) {
	cases := []struct {
		kind dm.Kind
		code int
	}{
		{dm.KindDelivered, http.StatusOK},
		{dm.KindInputMissing, http.StatusBadRequest},
		{dm.KindAccountNotFound, http.StatusNotFound},
		{dm.KindLookupFailed, http.StatusBadGateway},
		{dm.KindDeliveryRejected, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			sender := &senderStub{result: dm.Result{Kind: tc.kind, Text: "text for " + string(tc.kind)}}
			h := newTestServer(t, sender)

			req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(`{"username":"alice","message":"hi"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := serve(h, req)

			require.Equal(t, tc.code, rec.Code)
			var resp handlers.SendResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.kind == dm.KindDelivered, resp.Success)
			assert.Equal(t, tc.kind, resp.Kind)
			assert.Equal(t, "text for "+string(tc.kind), resp.Message)
			assert.Equal(t, "alice", sender.handle)
			assert.Equal(t, "hi", sender.body)
		})
	}
}

func TestAPIMessagesRejectsWrongContentType(t *testing.T) {
	sender := &senderStub{}
	h := newTestServer(t, sender)

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader("username=alice"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(h, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Zero(t, sender.calls)
}

func TestAPIMessagesRejectsMalformedJSON(t *testing.T) {
	sender := &senderStub{}
	h := newTestServer(t, sender)

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(`{"username":`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, sender.calls)
}

func TestAPIStatusAndHealth(t *testing.T) {
	h := newTestServer(t, &senderStub{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status handlers.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, handlers.StatusResponse{Connected: true, Handle: "operator", Display: "@operator"}, status)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health handlers.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestStaticStylesheet(t *testing.T) {
	h := newTestServer(t, &senderStub{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rec.Body.String(), ".status-box")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, &senderStub{}, func(cfg *config.ServerConfig) {
		cfg.EnableCORS = true
		cfg.AllowedOrigins = []string{"https://ops.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(h, req)

	assert.Equal(t, "https://ops.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
