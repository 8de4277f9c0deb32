package router

import (
	"context"
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/config"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/handler"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/infra"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/middleware"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/worker"
)

// Infra groups the external clients built by the composition root. The
// router only needs them to wire services and to report breaker state.
type Infra struct {
	ISBN   *infra.ISBNClient
	Mailer *infra.Mailer
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds the background purge of the rate limiters.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, ext Infra) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	general := middleware.NewRateLimiter("general", 1000, time.Minute)
	login := middleware.NewRateLimiter("login", cfg.RateLimitPerMinute, time.Minute)
	general.StartPurge(ctx)
	login.StartPurge(ctx)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	r.Use(general.Middleware("Demasiadas solicitudes. Intente nuevamente en un momento"))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)
	libroRepo := repository.NewLibroRepository(db)
	faltanteRepo := repository.NewFaltanteRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	loc := cfg.Location()
	dispatcher := worker.NewDispatcher(rdb)

	auditoriaSvc := service.NewAuditoriaService(auditoriaRepo)
	authSvc := service.NewAuthService(usuarioRepo, cfg, auditoriaSvc)
	turnoSvc := service.NewTurnoService(cajaRepo, loc, dispatcher)
	movimientoSvc := service.NewMovimientoService(cajaRepo)
	arqueoSvc := service.NewArqueoService(cajaRepo)
	reporteSvc := service.NewReporteService(cajaRepo, loc, cfg.PDFStoragePath)
	libroSvc := service.NewLibroService(libroRepo, infra.NewRedisCache(rdb), ext.ISBN, auditoriaSvc, cfg.ISBNPrefijoInterno)
	faltanteSvc := service.NewFaltanteService(faltanteRepo, auditoriaSvc)
	pedidoSvc := service.NewPedidoService(pedidoRepo, auditoriaSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	cajaH := handler.NewCajaHandler(turnoSvc, movimientoSvc, arqueoSvc, reporteSvc)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaSvc)
	librosH := handler.NewLibrosHandler(libroSvc)
	faltantesH := handler.NewFaltantesHandler(faltanteSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, map[string]*infra.CircuitBreaker{
		"isbn_lookup": ext.ISBN.Breaker(),
		"smtp":        ext.Mailer.Breaker(),
	}, func(ctx context.Context) (int64, error) {
		return worker.DLQLength(ctx, rdb, worker.QueueReportes)
	}))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", login.Middleware("Demasiados intentos de login. Intente nuevamente en un minuto"), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.POST("/auth/password", login.Middleware("Demasiados intentos. Intente nuevamente en un minuto"), authH.CambiarPassword)

		usuarios := v1.Group("/usuarios", middleware.RequireRole(model.RolDueno))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}

		caja := v1.Group("/caja")
		{
			caja.POST("/turnos", cajaH.AbrirTurno)
			caja.GET("/turnos", cajaH.ListarTurnos)
			caja.GET("/turnos/activo", cajaH.TurnoActivo)
			caja.GET("/turnos/:id", cajaH.ObtenerTurno)
			caja.POST("/turnos/:id/cerrar", cajaH.CerrarTurno)
			caja.PATCH("/turnos/:id/denominaciones/:denomId", cajaH.EditarDenominacion)
			caja.GET("/turnos/:id/totales", cajaH.Totales)
			caja.GET("/turnos/:id/arqueos", cajaH.ListarArqueos)
			caja.POST("/turnos/:id/arqueos", cajaH.RegistrarArqueo)
			caja.GET("/turnos/:id/movimientos", cajaH.ListarMovimientos)
			caja.GET("/turnos/:id/movimientos/editados", cajaH.ListarEditados)
			caja.GET("/turnos/:id/movimientos/eliminados", cajaH.ListarEliminados)
			caja.GET("/turnos/:id/export.xlsx", cajaH.ExportarXLSX)
			caja.GET("/turnos/:id/cierre.pdf", cajaH.DescargarCierrePDF)

			caja.POST("/movimientos", cajaH.CrearMovimiento)
			caja.PATCH("/movimientos/:id", cajaH.EditarMovimiento)
			caja.POST("/movimientos/:id/anular", cajaH.AnularMovimiento)
			caja.DELETE("/movimientos/:id", cajaH.EliminarMovimiento)
		}

		v1.GET("/auditoria", middleware.RequireRole(model.RolDueno), auditoriaH.Listar)

		libros := v1.Group("/libros")
		{
			libros.GET("", librosH.Buscar)
			libros.POST("", librosH.Crear)
			libros.GET("/bajas", librosH.ListarBajas)
			libros.GET("/isbn/:isbn", librosH.PorISBN)
			libros.POST("/isbn/generar", librosH.GenerarISBN)
			libros.GET("/externo/:isbn", librosH.Externo)
			libros.GET("/:id", librosH.Obtener)
			libros.PUT("/:id", librosH.Actualizar)
			libros.DELETE("/:id", librosH.Eliminar)
			libros.POST("/:id/bajar", librosH.Bajar)
		}

		faltantes := v1.Group("/faltantes")
		{
			faltantes.GET("", faltantesH.Listar)
			faltantes.POST("", faltantesH.Crear)
			faltantes.POST("/limpiar", faltantesH.Limpiar)
			faltantes.PUT("/:id", faltantesH.Editar)
			faltantes.DELETE("/:id", faltantesH.Eliminar)
		}

		pedidos := v1.Group("/pedidos")
		{
			pedidos.GET("", pedidosH.Listar)
			pedidos.POST("", pedidosH.Crear)
			pedidos.GET("/:id", pedidosH.Obtener)
			pedidos.PUT("/:id", pedidosH.Actualizar)
			pedidos.DELETE("/:id", pedidosH.Eliminar)
			pedidos.PATCH("/:id/estado", pedidosH.CambiarEstado)
			pedidos.PATCH("/:id/oculto", pedidosH.Ocultar)
		}
	}

	// Swagger UI outside production only.
	if !cfg.Production() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
