package echoapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/user"
)

const (
	sessionCookie   = "session"
	contextClaims   = "claims"
	bearerScheme    = "Bearer "
	audienceSession = "dashboard"
)

var signingMethod = jwt.SigningMethodHS256

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	PersonID string `json:"pid,omitempty"`
}

func (c Claims) Identity() user.Identity {
	id, _ := strconv.Atoi(c.Subject)
	return user.Identity{UserID: id, Username: c.Username, Role: c.Role, PersonID: c.PersonID}
}

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			Audience:  audienceSession,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: usr.Username,
		Role:     usr.Role,
		PersonID: usr.PersonID,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(signingMethod, claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(raw, secretKey string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != signingMethod.Alg() {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, errUnauthorized
	}
	if !claims.VerifyAudience(audienceSession, true) {
		return nil, errUnauthorized
	}
	return claims, nil
}

// tokenFromRequest reads the bearer token, falling back to the session cookie.
func tokenFromRequest(ctx echo.Context) string {
	if auth := ctx.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, bearerScheme) {
		return strings.TrimSpace(auth[len(bearerScheme):])
	}
	if c, err := ctx.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// authMiddleware puts the request Identity into the request context.
// Browsers asking for a page are sent to the login page instead of getting a 401.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := s.authenticateRequest(ctx)
		if err != nil {
			if errors.Cause(err) == errUnauthorized && ctx.Request().Method == http.MethodGet && wantsHTML(ctx) {
				return ctx.Redirect(http.StatusFound, "/login")
			}
			return err
		}

		ctx.Set(contextClaims, claims)
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(user.WithIdentity(req.Context(), claims.Identity())))
		return next(ctx)
	}
}

func (s *Server) authenticateRequest(ctx echo.Context) (*Claims, error) {
	raw := tokenFromRequest(ctx)
	if raw == "" {
		return nil, errUnauthorized
	}
	claims, err := parseToken(raw, s.deps.Conf.SecretKey)
	if err != nil {
		return nil, err
	}
	if s.deps.Tokens != nil {
		revoked, err := s.deps.Tokens.IsRevoked(ctx.Request().Context(), claims.Id)
		if err != nil {
			return nil, errors.Wrap(err, "checking session")
		}
		if revoked {
			return nil, errUnauthorized
		}
	}
	return claims, nil
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	if claims, ok := ctx.Get(contextClaims).(*Claims); ok {
		return claims, nil
	}
	return nil, errUnauthorized
}

func getContextIdentity(ctx echo.Context) user.Identity {
	id, _ := user.IdentityFrom(ctx.Request().Context())
	return id
}

func wantsHTML(ctx echo.Context) bool {
	return strings.Contains(ctx.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func wantsJSON(ctx echo.Context) bool {
	return strings.Contains(ctx.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
