package observability

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/grpclog"
)

// GRPCLogger adapts zerolog to grpclog.LoggerV2 so the gRPC runtime logs
// through the service logger.
type GRPCLogger struct {
	logger    zerolog.Logger
	verbosity int
}

var _ grpclog.LoggerV2 = (*GRPCLogger)(nil)

// NewGRPCLogger creates a GRPCLogger that delegates to the given logger,
// adding a "component":"grpc" field. gRPC's own info chatter is logged at
// debug level.
func NewGRPCLogger(logger zerolog.Logger, verbosity int) *GRPCLogger {
	return &GRPCLogger{
		logger:    logger.With().Str("component", "grpc").Logger(),
		verbosity: verbosity,
	}
}

func (l *GRPCLogger) Info(args ...interface{})  { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l *GRPCLogger) Infoln(args ...interface{}) { l.logger.Debug().Msg(sprintln(args)) }
func (l *GRPCLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *GRPCLogger) Warning(args ...interface{})  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l *GRPCLogger) Warningln(args ...interface{}) { l.logger.Warn().Msg(sprintln(args)) }
func (l *GRPCLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *GRPCLogger) Error(args ...interface{})  { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l *GRPCLogger) Errorln(args ...interface{}) { l.logger.Error().Msg(sprintln(args)) }
func (l *GRPCLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

// Fatal logs and exits; grpclog requires the process to stop.
func (l *GRPCLogger) Fatal(args ...interface{}) {
	l.logger.WithLevel(zerolog.FatalLevel).Msg(fmt.Sprint(args...))
	os.Exit(1)
}

func (l *GRPCLogger) Fatalln(args ...interface{}) {
	l.logger.WithLevel(zerolog.FatalLevel).Msg(sprintln(args))
	os.Exit(1)
}

func (l *GRPCLogger) Fatalf(format string, args ...interface{}) {
	l.logger.WithLevel(zerolog.FatalLevel).Msgf(format, args...)
	os.Exit(1)
}

// V reports whether verbosity level lvl is enabled.
func (l *GRPCLogger) V(lvl int) bool {
	return lvl <= l.verbosity
}

// sprintln matches fmt.Sprintln without the trailing newline.
func sprintln(args []interface{}) string {
	s := fmt.Sprintln(args...)
	return s[:len(s)-1]
}
