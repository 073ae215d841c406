package log

import (
	"context"

	"github.com/rs/zerolog"
)

// migrationLogger satisfies goose's Logger so migration output lands in the
// same structured stream as everything else.
type migrationLogger struct {
	logger *zerolog.Logger
}

func (m *migrationLogger) Printf(format string, v ...any) {
	m.logger.Info().Msgf(format, v...)
}

func (m *migrationLogger) Fatalf(format string, v ...any) {
	m.logger.Fatal().Msgf(format, v...)
}

// NewMigrationLogger pulls the logger from ctx for goose to write through.
func NewMigrationLogger(ctx context.Context) *migrationLogger {
	return &migrationLogger{logger: FromCtx(ctx)}
}
