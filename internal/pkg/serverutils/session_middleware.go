package serverutils

import (
	"net/url"
	"strings"
	"time"

	"student-risk-be/internal/entity"
	"student-risk-be/internal/pkg/logger"
	"student-risk-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	SessionCookie = "session_id"
	localSession  = "session"
)

// SessionManager binds a server side session to every page request through the session_id
// cookie. Handlers mutate the session through the manager; it is persisted once the handler
// returns.
type SessionManager struct {
	repo   contract.SessionRepository
	ttl    time.Duration
	secure bool
	log    logger.ILogger
}

func NewSessionManager(repo contract.SessionRepository, ttl time.Duration, secure bool, log logger.ILogger) *SessionManager {
	return &SessionManager{repo: repo, ttl: ttl, secure: secure, log: log}
}

func (m *SessionManager) newSession() *entity.Session {
	return &entity.Session{Id: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

func (m *SessionManager) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var session *entity.Session
		if id := ctx.Cookies(SessionCookie); id != "" {
			s, err := m.repo.Get(ctx.UserContext(), id)
			if err != nil {
				// a broken store degrades to an anonymous session rather than a failed page
				m.log.Error("SESSION", "Failed to load session", map[string]interface{}{"error": err.Error()})
			}
			session = s
		}
		if session == nil {
			session = m.newSession()
		}
		ctx.Locals(localSession, session)

		err := ctx.Next()

		current := m.Current(ctx)
		if saveErr := m.repo.Save(ctx.UserContext(), current); saveErr != nil {
			m.log.Error("SESSION", "Failed to save session", map[string]interface{}{"error": saveErr.Error()})
			return err
		}
		ctx.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    current.Id,
			Path:     "/",
			Expires:  time.Now().Add(m.ttl),
			HTTPOnly: true,
			Secure:   m.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return err
	}
}

// Current returns the request's session. Outside the middleware it is a fresh anonymous one.
func (m *SessionManager) Current(ctx *fiber.Ctx) *entity.Session {
	if s, ok := ctx.Locals(localSession).(*entity.Session); ok && s != nil {
		return s
	}
	s := m.newSession()
	ctx.Locals(localSession, s)
	return s
}

// Login rotates the session id and binds it to user. Pending flashes survive the rotation.
func (m *SessionManager) Login(ctx *fiber.Ctx, user *entity.User) {
	old := m.Current(ctx)
	m.destroy(ctx, old.Id)

	s := m.newSession()
	s.UserId = user.Id
	s.Email = user.Email
	s.Flashes = old.Flashes
	ctx.Locals(localSession, s)
}

// Logout destroys the session and starts a fresh anonymous one. Safe to call when anonymous.
func (m *SessionManager) Logout(ctx *fiber.Ctx) {
	old := m.Current(ctx)
	m.destroy(ctx, old.Id)
	ctx.Locals(localSession, m.newSession())
}

func (m *SessionManager) destroy(ctx *fiber.Ctx, id string) {
	if err := m.repo.Delete(ctx.UserContext(), id); err != nil {
		m.log.Warn("SESSION", "Failed to delete session", map[string]interface{}{"error": err.Error()})
	}
}

func (m *SessionManager) Flash(ctx *fiber.Ctx, category entity.FlashCategory, message string) {
	m.Current(ctx).AddFlash(category, message)
}

func (m *SessionManager) PopFlashes(ctx *fiber.Ctx) []entity.Flash {
	return m.Current(ctx).PopFlashes()
}

// RequireLogin redirects anonymous requests to the login page, remembering where they were going.
func (m *SessionManager) RequireLogin() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if m.Current(ctx).IsAuthenticated() {
			return ctx.Next()
		}
		return ctx.Redirect("/login?next="+url.QueryEscape(ctx.OriginalURL()), fiber.StatusFound)
	}
}

// RedirectAuthenticated sends signed in users away from the login and register pages.
func (m *SessionManager) RedirectAuthenticated(target string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if m.Current(ctx).IsAuthenticated() {
			return ctx.Redirect(target, fiber.StatusFound)
		}
		return ctx.Next()
	}
}

// SafeNext returns next when it is a local path, otherwise "/".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if u, err := url.Parse(next); err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
