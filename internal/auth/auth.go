package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

type contextKey string

const loginKey contextKey = "login"

const (
	CookieName = "session_token"
	DefaultTTL = 12 * time.Hour
)

var ErrInvalidToken = errors.New("auth: invalid token")

// Authenv holds the single operator account allowed to run sizing jobs.
type Authenv struct {
	JWTkey       []byte
	Login        string
	PasswordHash string
	TTL          time.Duration
	Log          logrus.FieldLogger
}

type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

type Loginrequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}
	return limiter
}

// LimitMiddleware rejects clients that exceed their per-IP budget.
func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}

		if !i.getLimiter(ip).Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (env *Authenv) logger() logrus.FieldLogger {
	if env.Log == nil {
		return logrus.StandardLogger()
	}
	return env.Log
}

func (env *Authenv) ttl() time.Duration {
	if env.TTL <= 0 {
		return DefaultTTL
	}
	return env.TTL
}

// Issue signs a token for login valid until the returned time.
func (env *Authenv) Issue(login string, now time.Time) (string, time.Time, error) {
	exp := now.Add(env.ttl())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"login": login,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	})
	s, err := token.SignedString(env.JWTkey)
	return s, exp, err
}

// Verify checks the signature and expiry and returns the login claim.
func (env *Authenv) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return env.JWTkey, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	login, ok := claims["login"].(string)
	if !ok || login == "" {
		return "", ErrInvalidToken
	}
	return login, nil
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthMiddleware accepts a bearer token or the session cookie.
func (env *Authenv) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFrom(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		login, err := env.Verify(raw)
		if err != nil {
			env.logger().WithField("remote", r.RemoteAddr).Debug("rejected token")
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), loginKey, login)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginFrom returns the authenticated login stored by AuthMiddleware.
func LoginFrom(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(loginKey).(string)
	return login, ok
}

func (env *Authenv) addCookie(w http.ResponseWriter, token string, expiration time.Time) {
	cookie := http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
}

func (env *Authenv) AuthHandler(w http.ResponseWriter, r *http.Request) {
	var req Loginrequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		http.Error(w, "Login and password required", http.StatusBadRequest)
		return
	}

	if env.PasswordHash == "" || req.Login != env.Login ||
		bcrypt.CompareHashAndPassword([]byte(env.PasswordHash), []byte(req.Password)) != nil {
		env.logger().WithField("login", req.Login).Warn("failed login")
		writeError(w, http.StatusUnauthorized, "invalid login or password")
		return
	}

	token, exp, err := env.Issue(req.Login, time.Now())
	if err != nil {
		env.logger().WithError(err).Error("sign token")
		http.Error(w, "Error creating token", http.StatusInternalServerError)
		return
	}
	env.addCookie(w, token, exp)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{Token: token, ExpiresAt: exp})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
