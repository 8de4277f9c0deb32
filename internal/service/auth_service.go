package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/config"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
)

// Token types carried in the "typ" claim. The middleware only accepts access
// tokens; Refresh only accepts refresh tokens.
const (
	TokenAcceso   = "access"
	TokenRefresco = "refresh"
)

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CambiarPassword(ctx context.Context, actor Actor, req dto.CambiarPasswordRequest) error
	CrearUsuario(ctx context.Context, actor Actor, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error
}

type authService struct {
	repo  repository.UsuarioRepository
	cfg   *config.Config
	audit AuditoriaService
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config, audit AuditoriaService) AuthService {
	return &authService{repo: repo, cfg: cfg, audit: audit}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorizedf("credenciales inválidas")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, unauthorizedf("credenciales inválidas")
	}

	now := time.Now().UTC()
	if err := s.repo.RegistrarLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("usuario", user.Username).Msg("auth: no se pudo registrar el último login")
	} else {
		user.UltimoLoginEn = &now
	}
	return s.emitir(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, unauthorizedf("refresh token inválido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, unauthorizedf("claims inválidos")
	}
	if typ, _ := claims["typ"].(string); typ != TokenRefresco {
		return nil, unauthorizedf("el token no es de refresco")
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, unauthorizedf("token mal formado")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, unauthorizedf("usuario no encontrado o inactivo")
	}
	return s.emitir(user)
}

// CambiarPassword requires the current password even though the caller is
// already authenticated; a stolen access token alone cannot take over the
// account.
func (s *authService) CambiarPassword(ctx context.Context, actor Actor, req dto.CambiarPasswordRequest) error {
	if len(req.Nueva) < 8 {
		return validationf("la nueva contraseña debe tener al menos 8 caracteres")
	}
	if req.Nueva == req.Actual {
		return validationf("la nueva contraseña debe ser distinta de la actual")
	}
	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return storeErr(err, "usuario")
	}
	if !user.Activo {
		return unauthorizedf("usuario inactivo")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Actual)) != nil {
		return unauthorizedf("la contraseña actual no coincide")
	}
	hash, err := HashPassword(req.Nueva)
	if err != nil {
		return err
	}
	if err := s.repo.ActualizarPassword(ctx, user.ID, hash); err != nil {
		return storeErr(err, "usuario")
	}
	registrarBestEffort(ctx, s.audit, actor, "usuario.password", model.EntidadUsuario, user.ID.String(), nil)
	return nil
}

func (s *authService) CrearUsuario(ctx context.Context, actor Actor, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	if !actor.Capacidades().AdministrarUsuarios {
		return nil, permissionf("solo el dueño puede crear usuarios")
	}
	if req.Rol != model.RolDueno && req.Rol != model.RolEmpleado {
		return nil, validationf("rol inválido %q", req.Rol)
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(req.Username),
		Nombre:       strings.TrimSpace(req.Nombre),
		PasswordHash: hash,
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, conflictf("el usuario %q ya existe", user.Username)
		}
		return nil, err
	}
	registrarBestEffort(ctx, s.audit, actor, "usuario.crear", model.EntidadUsuario, user.ID.String(), map[string]any{
		"username": user.Username,
		"rol":      user.Rol,
	})
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = toUsuarioResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.Capacidades().AdministrarUsuarios {
		return permissionf("solo el dueño puede desactivar usuarios")
	}
	if actor.ID == id {
		return conflictf("no podés desactivar tu propio usuario")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return storeErr(err, "usuario")
	}
	registrarBestEffort(ctx, s.audit, actor, "usuario.desactivar", model.EntidadUsuario, id.String(), nil)
	return nil
}

func (s *authService) emitir(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenRefresco, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         toUsuarioResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, typ string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"rol":      user.Rol,
		"typ":      typ,
		"exp":      now.Add(duration).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// HashPassword is shared with the seeding commands.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
