package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/velez/storefront/internal/domain"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func secretKey() []byte {
	k := os.Getenv("SESSION_KEY")
	if k == "" {
		k = "dev-insecure"
	}
	return []byte(k)
}

type sessionUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

func writeUserSession(w http.ResponseWriter, u *sessionUser) {
	if u == nil {
		http.SetCookie(w, &http.Cookie{Name: "sess", Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteStrictMode})
		return
	}
	b, _ := json.Marshal(u)
	h := hmac.New(sha256.New, secretKey())
	h.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	val := sig + "." + base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{Name: "sess", Value: val, Path: "/", MaxAge: 60 * 60 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteStrictMode})
}

func readUserSession(r *http.Request) *sessionUser {
	c, err := r.Cookie("sess")
	if err != nil || c.Value == "" {
		return nil
	}
	parts := strings.SplitN(c.Value, ".", 2)
	if len(parts) != 2 {
		return nil
	}
	sig, _ := base64.RawURLEncoding.DecodeString(parts[0])
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	h := hmac.New(sha256.New, secretKey())
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return nil
	}
	var u sessionUser
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil
	}
	if u.ID == uuid.Nil || u.Email == "" {
		return nil
	}
	return &u
}

// currentUser resolves the session cookie to a stored user. On failure it
// writes a 401 and returns nil.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) *domain.User {
	sess := readUserSession(r)
	if sess == nil {
		s.writeErr(w, r, http.StatusUnauthorized, "login required", nil)
		return nil
	}
	u, err := s.users.FindByID(r.Context(), sess.ID)
	if err != nil {
		s.writeErr(w, r, http.StatusUnauthorized, "login required", nil)
		return nil
	}
	return u
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	fields := map[string]string{}
	if !emailRe.MatchString(req.Email) {
		fields["email"] = "invalid email"
	}
	if len(req.Password) < 8 {
		fields["password"] = "minimum 8 characters"
	}
	if len(fields) > 0 {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", fields)
		return
	}
	if _, err := s.users.FindByEmail(r.Context(), req.Email); err == nil {
		s.writeErr(w, r, http.StatusBadRequest, "email already registered", nil)
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.writeDomainErr(w, r, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	u := &domain.User{ID: uuid.New(), Email: req.Email, Name: req.Name, PasswordHash: string(hash)}
	if err := s.users.Save(r.Context(), u); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeUserSession(w, &sessionUser{ID: u.ID, Email: u.Email, Name: u.Name})
	writeData(w, http.StatusCreated, map[string]any{"id": u.ID, "email": u.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	u, err := s.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		s.writeErr(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.writeErr(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	writeUserSession(w, &sessionUser{ID: u.ID, Email: u.Email, Name: u.Name})
	writeData(w, http.StatusOK, map[string]any{"id": u.ID, "email": u.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeUserSession(w, nil)
	writeData(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// --- Google OAuth ---

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		s.writeErr(w, r, http.StatusInternalServerError, "oauth not configured", nil)
		return
	}
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true})
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		s.writeErr(w, r, http.StatusInternalServerError, "oauth not configured", nil)
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie("oauth_state")
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		s.writeErr(w, r, http.StatusBadRequest, "state mismatch", nil)
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("oauth exchange")
		s.writeErr(w, r, http.StatusBadRequest, "oauth exchange failed", nil)
		return
	}
	client := s.oauthCfg.Client(r.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil || resp.StatusCode != http.StatusOK {
		log.Error().Err(err).Msg("oauth userinfo")
		s.writeErr(w, r, http.StatusBadRequest, "userinfo failed", nil)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	_ = json.Unmarshal(body, &info)
	if info.Email == "" {
		s.writeErr(w, r, http.StatusBadRequest, "email missing", nil)
		return
	}
	u, err := s.users.FindByEmail(r.Context(), info.Email)
	if errors.Is(err, domain.ErrNotFound) {
		u = &domain.User{ID: uuid.New(), Email: info.Email, Name: info.Name}
		if err := s.users.Save(r.Context(), u); err != nil {
			s.writeDomainErr(w, r, err)
			return
		}
	} else if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeUserSession(w, &sessionUser{ID: u.ID, Email: u.Email, Name: u.Name})
	http.Redirect(w, r, "/", http.StatusFound)
}

// --- admin auth ---

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	u, err := s.users.FindByEmail(r.Context(), req.Email)
	if err != nil || !u.IsAdmin {
		s.writeErr(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.writeErr(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	tok, exp, err := s.issueAdminToken(u.Email, 6*time.Hour)
	if err != nil {
		s.writeErr(w, r, http.StatusInternalServerError, "token", nil)
		return
	}
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: tok, Path: "/", MaxAge: 60 * 60 * 6, HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode})
	writeData(w, http.StatusOK, map[string]any{"token": tok, "exp": exp.Unix(), "email": u.Email})
}

func (s *Server) issueAdminToken(email string, dur time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(dur)
	claims := jwt.MapClaims{
		"sub":  email,
		"role": "admin",
		"iat":  time.Now().Unix(),
		"exp":  exp.Unix(),
		"iss":  "storefront",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.adminSecret)
	return tok, exp, err
}

func (s *Server) verifyAdminToken(tok string) (string, error) {
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.adminSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("claims")
	}
	role, _ := claims["role"].(string)
	sub, _ := claims["sub"].(string)
	if role != "admin" || sub == "" {
		return "", errors.New("claims")
	}
	return sub, nil
}

// adminOnly accepts a Bearer token or the admin cookie.
func (s *Server) adminOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := ""
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			tok = strings.TrimSpace(auth[7:])
		}
		if tok == "" {
			if c, err := r.Cookie("admin_token"); err == nil {
				tok = c.Value
			}
		}
		if tok == "" {
			s.writeErr(w, r, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if _, err := s.verifyAdminToken(tok); err != nil {
			s.writeErr(w, r, http.StatusForbidden, "forbidden", nil)
			return
		}
		h(w, r)
	}
}
