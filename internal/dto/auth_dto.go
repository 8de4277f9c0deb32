package dto

// ─── Sesión ──────────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CambiarPasswordRequest lets any logged-in user replace their own password.
type CambiarPasswordRequest struct {
	Actual string `json:"actual" validate:"required"`
	Nueva  string `json:"nueva"  validate:"required,min=8,max=72"`
}

// LoginResponse carries both tokens; ExpiresIn is the access token lifetime
// in seconds.
type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         UsuarioResponse `json:"user"`
}

// ─── Cuentas (solo dueño) ────────────────────────────────────────────────────

type CrearUsuarioRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Nombre   string `json:"nombre"   validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Rol      string `json:"rol"      validate:"required,oneof=dueno empleado"`
}

type UsuarioResponse struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Nombre        string  `json:"nombre"`
	Rol           string  `json:"rol"`
	Activo        bool    `json:"activo"`
	UltimoLoginEn *string `json:"ultimo_login_en"`
}
