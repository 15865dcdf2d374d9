package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sujalbistaa/postboard/internal/db/dbtest"
	"github.com/sujalbistaa/postboard/internal/store"
)

func newTestManager(t *testing.T) *Manager {
	m, err := NewManager(store.New(dbtest.New(t)), bcrypt.MinCost)
	require.NoError(t, err)
	return m
}

func TestRegister_HashesPassword(t *testing.T) {
	m := newTestManager(t)

	user, err := m.Register(context.Background(), "alice", "Alice@X.com ", "pw1")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.NotEqual(t, "pw1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1")))
}

func TestRegister_Duplicate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	_, err = m.Register(ctx, "alice2", "alice@x.com", "pw2")
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestRegister_BlankUsername(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Register(context.Background(), "   ", "alice@x.com", "pw1")
	assert.ErrorIs(t, err, ErrBlankField)

	_, err = m.Register(context.Background(), "alice", " ", "pw1")
	assert.ErrorIs(t, err, ErrBlankField)
}

func TestAuthenticate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	registered, err := m.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	user, err := m.Authenticate(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = m.Authenticate(ctx, "alice@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Authenticate(ctx, "nobody@x.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("0123456789abcdef"))))
	r.GET("/login/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		EstablishSession(c, uint(id))
		_ = sessions.Default(c).Save()
		c.Status(http.StatusNoContent)
	})
	r.GET("/logout", func(c *gin.Context) {
		ClearSession(c)
		_ = sessions.Default(c).Save()
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, strconv.Itoa(int(id)))
	})
	return r
}

func do(t *testing.T, r http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSessionLifecycle(t *testing.T) {
	r := newSessionRouter()

	rec := do(t, r, "/whoami", nil)
	assert.Equal(t, "anonymous", rec.Body.String())

	login := do(t, r, "/login/42", nil)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = do(t, r, "/whoami", cookies)
	assert.Equal(t, "42", rec.Body.String())

	logout := do(t, r, "/logout", cookies)
	cookies = logout.Result().Cookies()

	rec = do(t, r, "/whoami", cookies)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestSession_TamperedCookieIgnored(t *testing.T) {
	r := newSessionRouter()

	login := do(t, r, "/login/42", nil)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)
	cookies[0].Value = cookies[0].Value[:len(cookies[0].Value)-4] + "AAAA"

	rec := do(t, r, "/whoami", cookies)
	assert.Equal(t, "anonymous", rec.Body.String())
}
