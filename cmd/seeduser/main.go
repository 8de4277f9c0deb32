// Command seeduser creates an account or resets an existing one (password,
// name, role, reactivation). Migrations run first so it works on an empty
// database.
//
//	SEED_PASSWORD=... go run ./cmd/seeduser -username charles -rol dueno
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/infra"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default $DATABASE_URL)")
	username := flag.String("username", "dueno", "nombre de usuario")
	nombre := flag.String("nombre", "Dueño", "nombre visible")
	rol := flag.String("rol", model.RolDueno, "dueno | empleado")
	flag.Parse()

	password := os.Getenv("SEED_PASSWORD")
	switch {
	case *dsn == "":
		log.Fatal().Msg("falta -dsn o DATABASE_URL")
	case len(password) < 8:
		log.Fatal().Msg("SEED_PASSWORD debe tener al menos 8 caracteres")
	case *rol != model.RolDueno && *rol != model.RolEmpleado:
		log.Fatal().Str("rol", *rol).Msg("rol inválido")
	}

	if err := infra.RunMigrations(*dsn); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	db, err := infra.NewDatabase(*dsn, false)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres")
	}
	hash, err := service.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = db.WithContext(ctx).Exec(`
		INSERT INTO usuarios (username, nombre, password_hash, rol)
		VALUES (?, ?, ?, ?)
		ON CONFLICT ((LOWER(username))) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nombre        = EXCLUDED.nombre,
		    rol           = EXCLUDED.rol,
		    activo        = TRUE,
		    updated_at    = NOW()`,
		*username, *nombre, hash, *rol).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert usuario")
	}
	log.Info().Str("username", *username).Str("rol", *rol).Msg("usuario listo")
}
