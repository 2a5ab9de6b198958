// Command initinventory applies pending schema migrations, creates the room
// inventory rows that do not exist yet and, optionally, provisions the first
// administrator. Rows that already exist keep their live counts; adjust those
// through PUT /api/inventory/:roomType.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"hotel-booking/internal/handler/middleware"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/infra/uow"
	"hotel-booking/internal/pkg/clock"
	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/migrations"
)

func main() {
	path := flag.String("f", "inventory.yaml", "path to the inventory seed file")
	flag.Parse()

	if err := run(*path); err != nil {
		slog.Error("initialization failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.LoadToolConfig()
	if err != nil {
		return err
	}
	middleware.NewLogger(cfg.Log)

	s, err := loadSeed(path)
	if err != nil {
		return err
	}

	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		return err
	}
	slog.Info("schema up to date", "applied", applied)

	work := uow.NewPostgresUoW(pool)
	created, err := commands.NewInventoryCommands(work, nil).Initialize(ctx, s.counts)
	if err != nil {
		return err
	}
	for _, rt := range created {
		slog.Info("inventory initialized", "room_type", rt.String(), "available", s.counts[rt])
	}
	if kept := len(s.counts) - len(created); kept > 0 {
		slog.Info("existing inventory kept", "room_types", kept)
	}

	if s.admin != nil {
		users := commands.NewUserCommands(work, clock.NewRealClock())
		if _, err := users.Provision(ctx, s.admin.Email, s.password, s.admin.Role); err != nil {
			return err
		}
	}
	return nil
}
