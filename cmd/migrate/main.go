package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/timetracker-api/internal/infrastructure/postgres"
	"github.com/jhoicas/timetracker-api/pkg/config"
	"github.com/jhoicas/timetracker-api/pkg/logger"
)

func main() {
	var (
		command = flag.String("command", "", "Comando: up, down, version, force")
		steps   = flag.Int("steps", 1, "Pasos a revertir (down)")
		version = flag.Int("version", 0, "Versión a forzar (force)")
	)
	flag.Parse()

	if *command == "" {
		fmt.Println("Uso: migrate -command [up|down|version|force] [opciones]")
		fmt.Println("  up             aplica todas las migraciones pendientes")
		fmt.Println("  down           revierte -steps migraciones (1 por defecto)")
		fmt.Println("  version        muestra la versión actual")
		fmt.Println("  force          fija -version sin ejecutar SQL")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("crear migrador")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	switch *command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down(*steps)
	case "force":
		if *version == 0 {
			log.Fatal().Msg("force requiere -version")
		}
		err = m.Force(*version)
	case "version":
		var st postgres.MigrationStatus
		if st, err = m.Status(); err == nil {
			log.Info().Uint("version", st.Version).Bool("dirty", st.Dirty).Msg("estado del esquema")
		}
	default:
		log.Fatal().Str("command", *command).Msg("comando desconocido")
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("migración fallida")
	}
	if *command != "version" {
		log.Info().Str("command", *command).Msg("migración aplicada")
	}
}
