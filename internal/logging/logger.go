// Package logging construye el logger zap del servicio.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New devuelve un logger de produccion (JSON) con el nivel indicado.
// Un nivel vacio equivale a info.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	level = strings.TrimSpace(level)
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}
