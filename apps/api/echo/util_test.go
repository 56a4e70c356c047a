package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/tracker"
	"github.com/Abraham77967/Taskmate-Web/services/identity"
	"github.com/Abraham77967/Taskmate-Web/storage/memstore"
	testutil "github.com/Abraham77967/Taskmate-Web/tests"
)

const (
	username = "ada"
	password = "s3cret!"

	otherUsername = "bob"
	otherPassword = "hunter2!"
)

type httpErr struct {
	Error string `json:"error"`
}

type fixture struct {
	srv    Server
	db     *memstore.DB
	logger *testutil.Logger
}

func setup(t *testing.T) *fixture {
	db, remote := testutil.NewMemStore(t)
	conf := &core.Config{
		AppName:            "TaskMate",
		SecretKey:          "test-secret",
		JWTExpirationDelta: time.Hour,
		TestMode:           true,
		Timezone:           "UTC",
	}

	provider, err := identity.NewProvider(conf)
	require.NoError(t, err)
	require.NoError(t, provider.AddAccount(testutil.Identity("u1"), username, password))
	require.NoError(t, provider.AddAccount(testutil.Identity("u2"), otherUsername, otherPassword))

	tracker.NowFunc = testutil.Clock
	logger := &testutil.Logger{}
	trk := tracker.New(remote, provider, logger, conf)
	trk.Start()
	t.Cleanup(func() {
		trk.Stop()
		tracker.NowFunc = time.Now
	})

	srv := NewServer(&Options{
		AppName:        conf.AppName,
		TestMode:       true,
		DisableReqLogs: true,
		Tracker:        trk,
		Auth:           provider,
		Logger:         logger,
	})
	return &fixture{srv: srv, db: db, logger: logger}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (f *fixture) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	f.srv.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) signIn(t *testing.T) string {
	return f.signInAs(t, username, password)
}

func (f *fixture) signInAs(t *testing.T, uname, pwd string) string {
	rec := f.do(http.MethodPost, "/v1/auth/signin", "", marshallObj(t, LoginRequest{Username: uname, Password: pwd}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	unmarshallObj(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshallObj(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshallObj() failed: %v; body %s", err, rec.Body.String())
	}
}
