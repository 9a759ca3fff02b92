package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/accounts"
	"github.com/princinho/streamcatalog/database"
	"github.com/princinho/streamcatalog/logging"
	"github.com/princinho/streamcatalog/middleware"
	"github.com/princinho/streamcatalog/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminUser = "root"
	adminPass = "root-password"
)

type memoryObjectStorage struct {
	objects map[string][]byte
	err     error
}

func (m *memoryObjectStorage) Put(_ context.Context, objectName, _ string, body io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[objectName] = data
	return "https://cdn.example.com/" + objectName, nil
}

type testEnv struct {
	t       *testing.T
	handler http.Handler
	tokens  *utils.TokenService
	stores  database.Stores
	storage *memoryObjectStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores := database.NewMemoryStores()
	tokens := utils.NewTokenService("router-test-secret", time.Hour, 7*24*time.Hour)
	accts := accounts.NewService(stores.Users, stores.Revocations, tokens.RefreshTTL())
	_, err := accts.SeedAdmin(context.Background(), adminUser, "", adminPass)
	require.NoError(t, err)

	storage := &memoryObjectStorage{objects: map[string][]byte{}}
	engine := New(Deps{
		Accounts:       accts,
		Tokens:         tokens,
		Stores:         stores,
		Storage:        storage,
		ImageValidator: utils.NewImageValidator(nil, nil, 1),
		Limits:         utils.PageLimits{Default: 20, Max: 100},
		Logger:         logging.NewWithOutput("error", io.Discard),
	})

	return &testEnv{
		t:       t,
		handler: middleware.StripPrefix("/.netlify/functions/api", engine),
		tokens:  tokens,
		stores:  stores,
		storage: storage,
	}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) signup(username, password string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(e.t, w)["id"].(string)
}

func (e *testEnv) login(username, password string) (token, refresh string) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/login", "", map[string]string{"username": username, "password": password})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	body := decode(e.t, w)
	return body["token"].(string), body["refreshToken"].(string)
}

func (e *testEnv) adminToken() string {
	token, _ := e.login(adminUser, adminPass)
	return token
}

func film(title string) map[string]any {
	return map[string]any{
		"title":        title,
		"type":         "film",
		"duration":     "2h",
		"description":  "A film about " + title,
		"genre":        "Action",
		"releaseYear":  "2010",
		"thumbnailUrl": "https://cdn.example.com/" + title + ".jpg",
		"videoUrl":     "https://drive.google.com/file/d/abc123/view?usp=sharing",
	}
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestFunctionPrefixIsStripped(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/.netlify/functions/api/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/movies", nil)
	req.Header.Set("Origin", "https://front.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSignupLoginAndCheckAuth(t *testing.T) {
	env := newTestEnv(t)
	id := env.signup("alice", "alice-password")

	w := env.do(http.MethodPost, "/signup", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/signup", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/login", "", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "alice-password"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode(t, w)
	assert.Equal(t, "user", login["role"])

	claims, err := env.tokens.Verify(login["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt.Time, time.Second)

	w = env.do(http.MethodGet, "/check-auth", login["token"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/check-auth", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/check-auth", "garbage", nil).Code)
}

func TestRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	env.signup("alice", "alice-password")
	_, refresh := env.login("alice", "alice-password")

	w := env.do(http.MethodPost, "/refresh-token", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	claims, err := env.tokens.Verify(decode(t, w)["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	w = env.do(http.MethodPost, "/refresh-token", "", map[string]string{"refreshToken": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.do(http.MethodPost, "/refresh-token", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupEmailIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/signup", "", map[string]string{
		"username": "alice", "email": "  Alice@Example.com ", "password": "alice-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	stored, err := env.stores.Users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)

	w = env.do(http.MethodPost, "/signup", "", map[string]string{
		"username": "alice2", "email": "ALICE@example.com", "password": "alice-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Usernames compare exactly.
	w = env.do(http.MethodPost, "/signup", "", map[string]string{
		"username": "Alice", "email": "other@example.com", "password": "alice-password",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestRefreshTokenAsBearer(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	aliceID := env.signup("alice", "alice-password")
	_, refresh := env.login("alice", "alice-password")

	w := env.do(http.MethodGet, "/check-auth", refresh, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "alice", decode(t, w)["user"].(map[string]any)["username"])

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/admin/users/"+aliceID+"/ban", admin, map[string]bool{"ban": true}).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/check-auth", refresh, nil).Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	env.signup("alice", "alice-password")
	env.signup("bob", "bob-password")
	token, _ := env.login("alice", "alice-password")

	w := env.do(http.MethodPost, "/update-profile", token, map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/update-profile", token, map[string]string{"username": "alicia"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	claims, err := env.tokens.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alicia", claims.Username)

	_, err = env.stores.Users.FindByUsername(context.Background(), "alicia")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	env.signup("alice", "alice-password")
	token, _ := env.login("alice", "alice-password")

	w := env.do(http.MethodPost, "/change-password", token, map[string]string{
		"currentPassword": "wrong", "newPassword": "brand-new-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/change-password", token, map[string]string{
		"currentPassword": "alice-password", "newPassword": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/change-password", token, map[string]string{
		"currentPassword": "alice-password", "newPassword": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	env.login("alice", "brand-new-pass")
}

func TestCatalogLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	env.signup("alice", "alice-password")
	user, _ := env.login("alice", "alice-password")

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/movies", user, film("Heat")).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/movies", "", nil).Code)

	w := env.do(http.MethodPost, "/movies", admin, film("Heat"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := created["id"].(string)
	assert.Equal(t, []any{"Action"}, created["genre"])
	assert.Equal(t, "heat", created["slug"])
	assert.EqualValues(t, 2010, created["releaseYear"])

	w = env.do(http.MethodGet, "/movies/"+id, user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://drive.google.com/file/d/abc123/preview", decode(t, w)["videoUrl"])

	stored, err := env.stores.Movies.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/file/d/abc123/view?usp=sharing", stored.VideoURL)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, "/movies/"+id, user, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/movies/"+id, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/movies/"+id, user, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/movies/"+id, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/movies/not-an-id", user, nil).Code)
}

func TestCreateMovieValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()

	missing := film("Heat")
	delete(missing, "thumbnailUrl")
	w := env.do(http.MethodPost, "/movies", admin, missing)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "thumbnailUrl")

	noVideo := film("Heat")
	delete(noVideo, "videoUrl")
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/movies", admin, noVideo).Code)

	badType := film("Heat")
	badType["type"] = "documentary"
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/movies", admin, badType).Code)

	series := film("Dark")
	series["type"] = "série"
	delete(series, "videoUrl")
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/movies", admin, series).Code)

	series["episodes"] = []map[string]string{
		{"title": "Secrets", "videoUrl": "https://drive.google.com/open?id=ep1", "description": "Pilot"},
	}
	w = env.do(http.MethodPost, "/movies", admin, series)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = env.do(http.MethodGet, "/movies/"+id, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	episodes := decode(t, w)["episodes"].([]any)
	require.Len(t, episodes, 1)
	assert.Equal(t, "https://drive.google.com/file/d/ep1/preview", episodes[0].(map[string]any)["videoUrl"])
}

func TestListMovies(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()

	for _, title := range []string{"Heat", "Ronin", "Collateral"} {
		require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/movies", admin, film(title)).Code)
	}
	drama := film("Amour")
	drama["genre"] = []string{"Drame", "Romance"}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/movies", admin, drama).Code)

	w := env.do(http.MethodGet, "/movies", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 4, body["total"])
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 20, body["limit"])
	items := body["items"].([]any)
	require.Len(t, items, 4)
	assert.Equal(t, "Amour", items[0].(map[string]any)["title"], "newest first")

	w = env.do(http.MethodGet, "/movies?genre=Romance", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = env.do(http.MethodGet, "/movies?search=RONIN", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = env.do(http.MethodGet, "/movies?search=.*", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["total"], "search is literal")

	w = env.do(http.MethodGet, "/movies?page=2&limit=3", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["items"], 1)
	assert.EqualValues(t, 4, body["total"])

	w = env.do(http.MethodGet, "/movies?limit=100000", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 100, decode(t, w)["limit"])

	w = env.do(http.MethodGet, "/movies?page=50", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["items"])
}

func TestListMoviesMaxPage(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/movies", admin, film("Heat")).Code)

	w := env.do(http.MethodGet, "/movies?page=9223372036854775807&limit=2", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Empty(t, body["items"])
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 2, body["limit"])
}

func createRequest(t *testing.T, env *testEnv, token, title string) string {
	t.Helper()
	w := env.do(http.MethodPost, "/movie-requests", token, map[string]string{
		"title":    title,
		"imdbLink": "https://www.imdb.com/title/tt0113277/",
		"comment":  "please",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "pending", body["status"])
	return body["id"].(string)
}

func TestMovieRequests(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	env.signup("alice", "alice-password")
	env.signup("bob", "bob-password")
	alice, _ := env.login("alice", "alice-password")
	bob, _ := env.login("bob", "bob-password")

	w := env.do(http.MethodPost, "/movie-requests", alice, map[string]string{
		"title": "Heat", "imdbLink": "https://example.com/heat",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(http.MethodPost, "/movie-requests", alice, map[string]string{"title": "Heat"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	first := createRequest(t, env, alice, "Heat")
	second := createRequest(t, env, alice, "Ronin")
	createRequest(t, env, bob, "Thief")

	w = env.do(http.MethodGet, "/movie-requests", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 2, body["total"])
	for _, item := range body["items"].([]any) {
		assert.Equal(t, "alice", item.(map[string]any)["username"])
	}

	w = env.do(http.MethodGet, "/movie-requests", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["total"])

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/movie-requests/"+first+"/approve", alice, nil).Code)

	w = env.do(http.MethodPost, "/movie-requests/"+first+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	approved := decode(t, w)
	assert.Equal(t, "approved", approved["status"])
	assert.Equal(t, adminUser, approved["resolvedBy"])

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/movie-requests/"+first+"/approve", admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/movie-requests/"+first+"/reject", admin, nil).Code)

	w = env.do(http.MethodPost, "/movie-requests/"+second+"/reject", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rejected := decode(t, w)
	assert.Equal(t, "rejected", rejected["status"])
	assert.Equal(t, "Aucune raison fournie", rejected["rejectionReason"])

	third := createRequest(t, env, bob, "Manhunter")
	w = env.do(http.MethodPost, "/movie-requests/"+third+"/reject", admin, map[string]string{"reason": "already in catalog"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "already in catalog", decode(t, w)["rejectionReason"])

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/movie-requests/ffffffffffffffffffffffff/approve", admin, nil).Code)
}

func TestAdminUsersAndBan(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	aliceID := env.signup("alice", "alice-password")
	alice, refresh := env.login("alice", "alice-password")

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/admin/users", alice, nil).Code)

	w := env.do(http.MethodGet, "/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["total"])
	assert.NotContains(t, w.Body.String(), "passwordHash")

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/admin/users/"+aliceID+"/ban", admin, map[string]string{}).Code)

	w = env.do(http.MethodPost, "/admin/users/"+aliceID+"/ban", admin, map[string]bool{"ban": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["isBanned"])

	w = env.do(http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "alice-password"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/check-auth", alice, nil).Code, "issued tokens stop working")

	// A refreshed token is still blocked by the denylist.
	w = env.do(http.MethodPost, "/refresh-token", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decode(t, w)["token"].(string)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/movies", fresh, nil).Code)

	w = env.do(http.MethodPost, "/admin/users/"+aliceID+"/ban", admin, map[string]bool{"ban": false})
	require.Equal(t, http.StatusOK, w.Code)
	env.login("alice", "alice-password")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/admin/users/ffffffffffffffffffffffff/ban", admin, map[string]bool{"ban": true}).Code)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	id := env.signup("alice", "alice-password")
	alice, _ := env.login("alice", "alice-password")

	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/admin/users/"+id, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/admin/users/"+id, admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/check-auth", alice, nil).Code)

	w := env.do(http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "alice-password"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	id := env.signup("alice", "alice-password")
	alice, _ := env.login("alice", "alice-password")

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/movies", admin, film("Heat")).Code)
	req := createRequest(t, env, alice, "Ronin")
	createRequest(t, env, alice, "Thief")
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/movie-requests/"+req+"/approve", admin, nil).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/admin/users/"+id+"/ban", admin, map[string]bool{"ban": true}).Code)

	w := env.do(http.MethodGet, "/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"users": 2,
		"bannedUsers": 1,
		"movies": 1,
		"films": 1,
		"series": 0,
		"requests": {"pending": 1, "approved": 1, "rejected": 0, "total": 2}
	}`, w.Body.String())
}

func multipartImage(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Le Cinquième Élément"))
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestUploadThumbnail(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()

	upload := func(filename string, content []byte) *httptest.ResponseRecorder {
		body, contentType := multipartImage(t, filename, content)
		req := httptest.NewRequest(http.MethodPost, "/admin/uploads/thumbnail", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+admin)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		return w
	}

	w := upload("cover.png", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	objectName := body["objectName"].(string)
	assert.True(t, strings.HasPrefix(objectName, "thumbnails/le-cinquieme-element/"), objectName)
	assert.True(t, strings.HasSuffix(objectName, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+objectName, body["url"])
	assert.Equal(t, pngBytes, env.storage.objects[objectName])

	assert.Equal(t, http.StatusBadRequest, upload("cover.exe", pngBytes).Code)
	assert.Equal(t, http.StatusBadRequest, upload("cover.png", []byte("hello")).Code)

	env.storage.err = errors.New("bucket unavailable")
	assert.Equal(t, http.StatusInternalServerError, upload("cover.png", pngBytes).Code)
}

func TestUploadWithoutStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stores := database.NewMemoryStores()
	tokens := utils.NewTokenService("secret", time.Hour, time.Hour)
	accts := accounts.NewService(stores.Users, stores.Revocations, time.Hour)
	_, err := accts.SeedAdmin(context.Background(), adminUser, "", adminPass)
	require.NoError(t, err)

	engine := New(Deps{Accounts: accts, Tokens: tokens, Stores: stores, ImageValidator: utils.NewImageValidator(nil, nil, 1)})
	p, err := accts.Authenticate(context.Background(), adminUser, adminPass)
	require.NoError(t, err)
	token, err := tokens.Issue(p, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin/uploads/thumbnail", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/ping", "", nil)

	w := env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestAuthRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stores := database.NewMemoryStores()
	tokens := utils.NewTokenService("secret", time.Hour, time.Hour)
	engine := New(Deps{
		Accounts:    accounts.NewService(stores.Users, stores.Revocations, time.Hour),
		Tokens:      tokens,
		Stores:      stores,
		AuthLimiter: middleware.NewIPRateLimiter(1, time.Hour, 2, time.Hour),
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"x","password":"y"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, codes)
}
