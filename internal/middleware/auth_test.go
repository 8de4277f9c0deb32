package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
)

const testSecret = "secreto-de-prueba"

func init() { gin.SetMode(gin.TestMode) }

func firmar(t *testing.T, secret, typ, rol, userID string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": "ana",
		"rol":      rol,
		"typ":      typ,
		"exp":      exp.Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protegido(roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		actor := GetActor(c)
		c.String(http.StatusOK, actor.Username+":"+actor.Rol)
	})
	r.GET("/p", handlers...)
	return r
}

func pedir(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	uid := uuid.NewString()
	futuro := time.Now().Add(time.Hour)

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"sin token", "", http.StatusUnauthorized},
		{"acceso valido", firmar(t, testSecret, service.TokenAcceso, model.RolEmpleado, uid, futuro), http.StatusOK},
		{"refresh rechazado", firmar(t, testSecret, service.TokenRefresco, model.RolEmpleado, uid, futuro), http.StatusUnauthorized},
		{"otra firma", firmar(t, "otro", service.TokenAcceso, model.RolEmpleado, uid, futuro), http.StatusUnauthorized},
		{"expirado", firmar(t, testSecret, service.TokenAcceso, model.RolEmpleado, uid, time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"user_id invalido", firmar(t, testSecret, service.TokenAcceso, model.RolEmpleado, "123", futuro), http.StatusUnauthorized},
	}
	r := protegido()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := pedir(r, tc.token)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	w := pedir(r, firmar(t, testSecret, service.TokenAcceso, model.RolEmpleado, uid, futuro))
	assert.Equal(t, "ana:empleado", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	uid := uuid.NewString()
	futuro := time.Now().Add(time.Hour)
	r := protegido(model.RolDueno)

	w := pedir(r, firmar(t, testSecret, service.TokenAcceso, model.RolEmpleado, uid, futuro))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = pedir(r, firmar(t, testSecret, service.TokenAcceso, model.RolDueno, uid, futuro))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearer(t *testing.T) {
	tok, ok := bearer("bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = bearer("Basic dXNlcjpwdw==")
	assert.False(t, ok)
	_, ok = bearer("Bearer   ")
	assert.False(t, ok)
}

func TestJWTAuth_SinExpiracionRechazado(t *testing.T) {
	claims := jwt.MapClaims{"user_id": uuid.NewString(), "rol": model.RolDueno, "typ": service.TokenAcceso}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := pedir(protegido(), s)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
}
