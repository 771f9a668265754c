// Package logger envuelve zerolog con la política de salida de la
// aplicación: consola legible en development, JSON estructurado en
// producción. Las capas reciben *Logger por inyección; nadie escribe por
// el logger global directamente.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones del logger.
type Config struct {
	Env   string // development -> consola legible; cualquier otro -> JSON
	Level string // trace, debug, info, warn, error
}

// Logger envuelve zerolog.Logger.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger según la configuración. Un nivel desconocido o vacío
// cae a info.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()

	// Lo que otras librerías emitan por el logger global sale por la misma
	// salida y con el mismo nivel.
	log.Logger = zl

	return &Logger{zl: zl}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With abre un sublogger con campos fijos.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Zerolog expone el logger interno para quien necesite la API directa.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
