// internal/handlers/friend_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/linguahub/backend/internal/auth"
	"github.com/linguahub/backend/internal/bridge"
	"github.com/linguahub/backend/internal/directory"
	"github.com/linguahub/backend/internal/memstore"
	"github.com/linguahub/backend/internal/models"
	"github.com/linguahub/backend/internal/relationship"
)

type fakeMinter struct{}

func (fakeMinter) MintToken(userID string) (string, error) {
	return "token-for-" + userID, nil
}

type dropQueue struct{}

func (dropQueue) EnqueueUpsert(ctx context.Context, job bridge.UpsertJob) error { return nil }

func newTestServer(t *testing.T) (http.Handler, *memstore.Store) {
	t.Helper()
	if err := auth.Init(); err != nil {
		t.Fatalf("auth init failed: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memstore.New()
	srv := &Server{
		Log:        log,
		Accounts:   store,
		Engine:     relationship.NewEngine(store, store, log),
		Directory:  directory.New(store, dropQueue{}, log),
		Tokens:     fakeMinter{},
		CORSOrigin: "http://localhost:5173",
	}
	return srv.Routes(), store
}

// signupUser registers a user through the real signup handler and returns
// the session cookie plus the created record.
func signupUser(t *testing.T, h http.Handler, name string) (*http.Cookie, models.User) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123","fullName":%q}`, name+"@example.com", name)
	req := httptest.NewRequest("POST", "/auth/signup", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: expected 201, got %d, body=%s", name, w.Code, w.Body.String())
	}

	var resp struct {
		User models.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode signup response: %v", err)
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c, resp.User
		}
	}
	t.Fatalf("signup %s: no session cookie set", name)
	return nil, models.User{}
}

func onboardUser(t *testing.T, h http.Handler, cookie *http.Cookie, name string) {
	t.Helper()
	body := fmt.Sprintf(`{"fullName":%q,"bio":"hi","nativeLanguage":"english","learningLanguage":"spanish","location":"Lisbon"}`, name)
	req := httptest.NewRequest("POST", "/auth/onboarding", bytes.NewBufferString(body))
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("onboard %s: expected 200, got %d, body=%s", name, w.Code, w.Body.String())
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, cookie *http.Cookie, want int) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != want {
		t.Fatalf("%s %s: expected %d, got %d, body=%s", method, path, want, w.Code, w.Body.String())
	}
	return w
}

// TestFriendFlow walks the whole lifecycle over HTTP: signup, onboarding,
// discovery, request, accept, and the resulting friend lists.
func TestFriendFlow(t *testing.T) {
	h, _ := newTestServer(t)

	aliceCookie, alice := signupUser(t, h, "alice")
	bobCookie, bob := signupUser(t, h, "bob")
	onboardUser(t, h, aliceCookie, "alice")
	onboardUser(t, h, bobCookie, "bob")

	// alice discovers bob
	w := doJSON(t, h, "GET", "/user/", aliceCookie, http.StatusOK)
	var recs []models.User
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatalf("failed to decode recommendations: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != bob.ID {
		t.Fatalf("expected exactly bob in recommendations, got %+v", recs)
	}

	// alice sends bob a friend request
	w = doJSON(t, h, "POST", "/user/friend-request/"+bob.ID.String(), aliceCookie, http.StatusCreated)
	var created models.FriendRequest
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created request: %v", err)
	}
	if created.Status != models.RequestPending {
		t.Fatalf("expected pending request, got %q", created.Status)
	}

	// duplicate send conflicts, in both directions
	doJSON(t, h, "POST", "/user/friend-request/"+bob.ID.String(), aliceCookie, http.StatusConflict)
	doJSON(t, h, "POST", "/user/friend-request/"+alice.ID.String(), bobCookie, http.StatusConflict)

	// bob sees the incoming request with alice's profile
	w = doJSON(t, h, "GET", "/user/friend-requests", bobCookie, http.StatusOK)
	var lists struct {
		IncomingReqs []models.FriendRequestView `json:"incomingReqs"`
		AcceptedReqs []models.FriendRequestView `json:"acceptedReqs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &lists); err != nil {
		t.Fatalf("failed to decode request lists: %v", err)
	}
	if len(lists.IncomingReqs) != 1 || lists.IncomingReqs[0].Sender == nil || lists.IncomingReqs[0].Sender.FullName != "alice" {
		t.Fatalf("expected one incoming request from alice, got %+v", lists.IncomingReqs)
	}

	// alice may not accept her own request
	doJSON(t, h, "PUT", "/user/friend-request/"+created.ID.String()+"/accept", aliceCookie, http.StatusForbidden)

	// bob accepts
	doJSON(t, h, "PUT", "/user/friend-request/"+created.ID.String()+"/accept", bobCookie, http.StatusOK)

	// alice's outgoing list is now empty
	w = doJSON(t, h, "GET", "/user/outgoing-friend-requests", aliceCookie, http.StatusOK)
	var outgoing []models.FriendRequestView
	if err := json.Unmarshal(w.Body.Bytes(), &outgoing); err != nil {
		t.Fatalf("failed to decode outgoing list: %v", err)
	}
	if len(outgoing) != 0 {
		t.Fatalf("expected no outgoing requests after accept, got %+v", outgoing)
	}

	// both friends lists contain the other's profile
	w = doJSON(t, h, "GET", "/user/friends", bobCookie, http.StatusOK)
	var friends []models.PublicProfile
	if err := json.Unmarshal(w.Body.Bytes(), &friends); err != nil {
		t.Fatalf("failed to decode friend list: %v", err)
	}
	if len(friends) != 1 || friends[0].FullName != "alice" {
		t.Fatalf("expected alice in bob's friends, got %+v", friends)
	}
	w = doJSON(t, h, "GET", "/user/friends", aliceCookie, http.StatusOK)
	if err := json.Unmarshal(w.Body.Bytes(), &friends); err != nil {
		t.Fatalf("failed to decode friend list: %v", err)
	}
	if len(friends) != 1 || friends[0].FullName != "bob" {
		t.Fatalf("expected bob in alice's friends, got %+v", friends)
	}

	// friends are excluded from further recommendations
	w = doJSON(t, h, "GET", "/user/", aliceCookie, http.StatusOK)
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatalf("failed to decode recommendations: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty recommendations, got %+v", recs)
	}
}

func TestGuardedRoutesRejectMissingSession(t *testing.T) {
	h, _ := newTestServer(t)

	for _, path := range []string{"/user/", "/user/friends", "/chat/token", "/auth/me"} {
		doJSON(t, h, "GET", path, nil, http.StatusUnauthorized)
	}
}

func TestSelfRequestRejected(t *testing.T) {
	h, _ := newTestServer(t)

	cookie, alice := signupUser(t, h, "alice")
	doJSON(t, h, "POST", "/user/friend-request/"+alice.ID.String(), cookie, http.StatusBadRequest)
}

func TestChatToken(t *testing.T) {
	h, _ := newTestServer(t)

	cookie, alice := signupUser(t, h, "alice")
	w := doJSON(t, h, "GET", "/chat/token", cookie, http.StatusOK)

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode token response: %v", err)
	}
	if resp["token"] != "token-for-"+alice.ID.String() {
		t.Fatalf("unexpected token %q", resp["token"])
	}
}
