package service

import (
	"database/sql"
	"errors"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

func orSystemClock(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}

func orNop(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return logger
}

// notFound turns a missing row into a NotFound with the given message and
// passes every other error through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(format, args...)
	}
	return err
}

// logFailure logs err at a level that matches its kind and returns it unchanged.
func logFailure(logger *zerolog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	event := logger.Error()
	if domain.KindOf(err) != domain.KindUnknown {
		event = logger.Warn()
	}
	event.Err(err).Str("op", op).Str("kind", domain.KindOf(err).String()).Msg("operation failed")
	return err
}
