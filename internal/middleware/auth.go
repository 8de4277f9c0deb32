package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/apierror"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
)

// ActorKey holds the service.Actor of an authenticated request.
const ActorKey = "actor"

// JWTClaims mirrors what AuthService signs.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Rol      string `json:"rol"`
	Tipo     string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTAuth accepts only unexpired HS256 access tokens. Refresh tokens are
// rejected here so they cannot be used as long-lived session tokens.
func JWTAuth(secret string) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	key := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

	return func(c *gin.Context) {
		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			noAutorizado(c, "Autenticación requerida")
			return
		}
		claims := &JWTClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, key); err != nil {
			noAutorizado(c, "Token inválido o expirado")
			return
		}
		if claims.Tipo != service.TokenAcceso {
			noAutorizado(c, "Se requiere un token de acceso")
			return
		}
		id, err := uuid.Parse(claims.UserID)
		if err != nil {
			noAutorizado(c, "Token mal formado")
			return
		}

		c.Set(ActorKey, service.Actor{ID: id, Username: claims.Username, Rol: claims.Rol})
		c.Next()
	}
}

// bearer extracts the token; the scheme is case-insensitive.
func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func noAutorizado(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(msg))
}

// RequireRole must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorDe(c)
		if !ok {
			noAutorizado(c, "Autenticación requerida")
			return
		}
		for _, r := range roles {
			if actor.Rol == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
	}
}

func actorDe(c *gin.Context) (service.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return service.Actor{}, false
	}
	a, ok := v.(service.Actor)
	return a, ok
}

// GetActor returns the authenticated actor. Handlers behind JWTAuth always
// have one; elsewhere it is the zero Actor.
func GetActor(c *gin.Context) service.Actor {
	a, _ := actorDe(c)
	return a
}
