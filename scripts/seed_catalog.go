package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"shareit/internal/database"
	"shareit/internal/seed"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	var (
		seedPath = flag.String("seed", "configs/seed.yaml", "path to seed.yaml")
		dbPath   = flag.String("db", "./data/shareit.db", "path to sqlite db")
	)
	flag.Parse()

	file, err := seed.Load(*seedPath)
	if err != nil {
		return err
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bookings := service.NewBookingService(db, db, db, db, nil, nil, service.SystemClock, &logger)
	comments := service.NewCommentService(db, db, db, db, db, nil, service.SystemClock, &logger)
	items := service.NewItemService(db, db, db, bookings, comments, db, &logger)
	users := service.NewUserService(db, db, &logger)
	requests := service.NewRequestService(db, db, db, db, service.SystemClock, &logger)

	res, err := seed.NewLoader(users, requests, items, &logger).Apply(ctx, file)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(map[string]*seed.Result{"created": res})
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
