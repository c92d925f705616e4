package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/abrezinsky/mvpboard/internal/models"
)

const (
	CookieName    = "mvpboard_session"
	SessionExpiry = 24 * time.Hour
)

// Classroom-themed words for password generation
var boardWords = []string{
	"chalk", "recess", "roster", "pencil", "grade",
	"desk", "locker", "eraser", "notebook", "bell",
	"homework", "quiz", "gold", "star", "mvp",
	"winner", "flap", "board", "class",
}

type session struct {
	user   models.User
	expiry time.Time
}

// Auth guards the board with a shared password and maps each session
// token to the signed-in user.
type Auth struct {
	password string
	sessions map[string]session
	mu       sync.RWMutex
}

// New creates a new Auth instance with the given board password
func New(password string) *Auth {
	return &Auth{
		password: password,
		sessions: make(map[string]session),
	}
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		idx := randomInt(len(boardWords))
		words[i] = boardWords[idx]
	}
	return strings.Join(words, "-")
}

// CheckPassword reports whether the given password matches.
func (a *Auth) CheckPassword(password string) bool {
	return password == a.password
}

// CreateSession issues a session token bound to the user.
func (a *Auth) CreateSession(user models.User) string {
	token := generateToken()
	a.mu.Lock()
	a.sessions[token] = session{user: user, expiry: time.Now().Add(SessionExpiry)}
	a.mu.Unlock()
	return token
}

// Logout invalidates a session token
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// SessionUser returns the user behind a valid session token.
func (a *Auth) SessionUser(token string) (models.User, bool) {
	a.mu.RLock()
	s, exists := a.sessions[token]
	a.mu.RUnlock()

	if !exists {
		return models.User{}, false
	}

	if time.Now().After(s.expiry) {
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return models.User{}, false
	}

	return s.user, true
}

// CurrentUser extracts and validates the session user from a request.
func (a *Auth) CurrentUser(r *http.Request) (models.User, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return models.User{}, false
	}
	return a.SessionUser(cookie.Value)
}

// RequireAuthAPI middleware for API endpoints (returns 401)
func (a *Auth) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
	})
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// generateToken creates a random session token
func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// randomInt returns a random int in [0, max)
func randomInt(max int) int {
	bytes := make([]byte, 1)
	rand.Read(bytes)
	return int(bytes[0]) % max
}
