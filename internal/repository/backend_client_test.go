package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-portal/internal/models"
	"github.com/noah-isme/coaching-portal/pkg/config"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

type backendCall struct {
	op     string
	status int
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []backendCall
}

func (o *recordingObserver) ObserveBackendCall(op string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, backendCall{op: op, status: status})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*BackendClient, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	return NewBackendClient(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, obs, nil), obs
}

func TestBackendClientAttachesBearerToken(t *testing.T) {
	var auth []string
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	})

	var out []models.Lead
	require.NoError(t, client.Get(context.Background(), "leads.list", "tok-1", "/leads", nil, &out))
	require.NoError(t, client.Get(context.Background(), "courses.list", "", "/courses", nil, &out))

	assert.Equal(t, []string{"Bearer tok-1", ""}, auth)
	assert.Equal(t, []backendCall{{"leads.list", 200}, {"courses.list", 200}}, obs.calls)
}

func TestBackendClientMapsStatuses(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		status  int
		body    string
		code    string
		message string
	}{
		{"token 401 is bad credentials", "/token", 401, `{"detail":"Incorrect username or password"}`, "INVALID_CREDENTIALS", "Invalid credentials. Please try again."},
		{"other 401 is expired session", "/leads", 401, `{"detail":"Could not validate credentials"}`, "SESSION_EXPIRED", "Could not validate credentials"},
		{"422 list detail", "/public/leads", 422, `{"detail":[{"loc":["body","phone"],"msg":"Phone number must be 10 digits"}]}`, "VALIDATION_ERROR", "phone: Phone number must be 10 digits"},
		{"400 string detail", "/enrollments", 400, `{"detail":"Student already enrolled in this batch"}`, "VALIDATION_ERROR", "Student already enrolled in this batch"},
		{"404", "/leads/9/call", 404, `{"detail":"Lead not found"}`, "NOT_FOUND", "Lead not found"},
		{"500 without body", "/leads/1/notify/email", 500, ``, "UPSTREAM_ERROR", "backend request failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			err := client.PostJSON(context.Background(), "op", "tok", tc.path, map[string]string{}, nil)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.code, appErr.Code)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}

func TestBackendClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	obs := &recordingObserver{}
	client := NewBackendClient(config.BackendConfig{BaseURL: url, Timeout: time.Second}, obs, nil)

	err := client.Get(context.Background(), "leads.list", "tok", "/leads", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTransport))
	assert.Equal(t, []backendCall{{"leads.list", 0}}, obs.calls)
}

func TestAuthRepositoryTokenIsFormEncoded(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "amy@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	})

	token, err := NewAuthRepository(client).Token(context.Background(), "amy@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestLeadRepositoryNotifyUsesQueryParams(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		switch r.URL.Path {
		case "/leads/7/notify/email":
			assert.Equal(t, "Hello", r.URL.Query().Get("subject"))
			assert.Equal(t, "Say hi", r.URL.Query().Get("prompt"))
		case "/leads/7/notify/whatsapp":
			assert.Empty(t, r.URL.Query().Get("subject"))
			assert.Equal(t, "Ping", r.URL.Query().Get("prompt"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	repo := NewLeadRepository(client)
	require.NoError(t, repo.NotifyEmail(context.Background(), "tok", 7, "Hello", "Say hi"))
	require.NoError(t, repo.NotifyWhatsApp(context.Background(), "tok", 7, "Ping"))
}

func TestLeadRepositoryBroadcastPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leads/bulk/notify/email", r.URL.Path)
		var body models.BulkNotifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []int64{3, 1}, body.LeadIDs)
		assert.Equal(t, "Launch", body.Subject)
		_, _ = w.Write([]byte(`{"message":"Email notifications sent to 2 leads"}`))
	})

	msg, err := NewLeadRepository(client).BroadcastNotify(context.Background(), "tok", models.ChannelEmail, models.BulkNotifyRequest{
		LeadIDs: []int64{3, 1},
		Subject: "Launch",
		Prompt:  "New batch",
	})
	require.NoError(t, err)
	assert.Equal(t, "Email notifications sent to 2 leads", msg)
}

func TestLeadRepositoryImportUploadsMultipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		raw, _ := io.ReadAll(file)
		assert.Equal(t, "leads.csv", header.Filename)
		assert.Equal(t, "name,email\n", string(raw))
		_, _ = w.Write([]byte(`{"imported":3,"errors":["row 4: bad phone"],"total_rows":4}`))
	})

	result, err := NewLeadRepository(client).Import(context.Background(), "tok", "leads.csv", strings.NewReader("name,email\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 4, result.TotalRows)
	assert.Len(t, result.Errors, 1)
}
