package storage

import (
	"fmt"

	"go.uber.org/zap"

	"citation-hand/config"
)

// Open erstellt den in der Konfiguration gewählten Provider.
func Open(cfg *config.Config, log *zap.Logger) (Provider, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		p, err := OpenPostgres(cfg.DSN(), log)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.DriverSQLite:
		p, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("SQLite-Datenbank geöffnet.", zap.String("path", cfg.SQLitePath))
		return p, nil
	case config.DriverMemory:
		log.Warn("In-Memory-Speicher aktiv, Daten gehen beim Neustart verloren.")
		return NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
