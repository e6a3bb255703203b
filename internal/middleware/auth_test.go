package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"boards-backend/internal/config"
	"boards-backend/internal/providers/core"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fakeCore mimics the identity service endpoints the middleware hits.
type fakeCore struct {
	profileBody string
	generalBody string
	manageBody  string
	calls       atomic.Int64
}

func (f *fakeCore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	switch {
	case r.URL.Path == "/members/me":
		w.Write([]byte(f.profileBody))
	case r.URL.Path == "/my_permissions" && r.Method == http.MethodGet:
		w.Write([]byte(f.generalBody))
	case r.URL.Path == "/my_permissions" && r.Method == http.MethodPost:
		w.Write([]byte(f.manageBody))
	default:
		http.NotFound(w, r)
	}
}

func newAuthRouter(t *testing.T, fake *fakeCore) (*gin.Engine, func()) {
	t.Helper()
	srv := httptest.NewServer(fake)

	// CoreBaseURL joins url and port with a colon, so split the test
	// server address at its port.
	i := strings.LastIndex(srv.URL, ":")
	cfg := &config.Config{CoreURL: srv.URL[:i], CorePort: srv.URL[i+1:]}
	client := core.NewClient(cfg, zap.NewNop())

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Authenticate(client, zap.NewNop()))
	engine.GET("/protected", func(c *gin.Context) {
		perms := GetPermissions(c)
		c.JSON(http.StatusOK, gin.H{
			"token":  GetToken(c),
			"global": perms.ManageBoards.Global,
			"view":   perms.ViewBoard,
		})
	})

	return engine, srv.Close
}

func request(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_NoToken(t *testing.T) {
	fake := &fakeCore{}
	engine, closeSrv := newAuthRouter(t, fake)
	defer closeSrv()

	w := request(engine, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No auth token provided.") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if fake.calls.Load() != 0 {
		t.Fatal("no outbound call may happen without a token")
	}
}

func TestAuthenticate_ProfileFailureIs401(t *testing.T) {
	fake := &fakeCore{
		profileBody: `{"success":false,"message":"bad token"}`,
		generalBody: `{"success":true,"data":[]}`,
		manageBody:  `{"success":true,"data":[]}`,
	}
	engine, closeSrv := newAuthRouter(t, fake)
	defer closeSrv()

	w := request(engine, "bad")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Error fetching user: user is not authenticated.") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAuthenticate_GeneralPermissionFailureIs500(t *testing.T) {
	fake := &fakeCore{
		profileBody: `{"success":true,"data":{"id":1,"bodies":[]}}`,
		generalBody: `{"success":false,"message":"boom"}`,
		manageBody:  `{"success":true,"data":[]}`,
	}
	engine, closeSrv := newAuthRouter(t, fake)
	defer closeSrv()

	w := request(engine, "token")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("a permission failure is internal, not 401; got %d", w.Code)
	}
}

func TestAuthenticate_UnsuccessfulManageLookupIsTolerated(t *testing.T) {
	fake := &fakeCore{
		profileBody: `{"success":true,"data":{"id":1,"bodies":[{"id":10,"name":"AEGEE-A"}]}}`,
		generalBody: `{"success":true,"data":[]}`,
		manageBody:  `{"success":false,"message":"no such permission"}`,
	}
	engine, closeSrv := newAuthRouter(t, fake)
	defer closeSrv()

	w := request(engine, "token")
	if w.Code != http.StatusOK {
		t.Fatalf("an unsuccessful scoped lookup must not block the request; got %d", w.Code)
	}
}

func TestAuthenticate_AttachesPermissionsAndToken(t *testing.T) {
	fake := &fakeCore{
		profileBody: `{"success":true,"data":{"id":1,"bodies":[{"id":10,"name":"AEGEE-A"}]}}`,
		generalBody: `{"success":true,"data":[{"combined":"read:view:board"},{"combined":"create:global:manage_network:boards"}]}`,
		manageBody:  `{"success":true,"data":[{"body_id":10}]}`,
	}
	engine, closeSrv := newAuthRouter(t, fake)
	defer closeSrv()

	w := request(engine, "token-xyz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got struct {
		Token  string `json:"token"`
		Global bool   `json:"global"`
		View   bool   `json:"view"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected body: %v", err)
	}
	if got.Token != "token-xyz" {
		t.Fatalf("token not attached, got %q", got.Token)
	}
	if !got.Global || !got.View {
		t.Fatalf("grants not resolved: %+v", got)
	}
}
