package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"memory-assistant/internal/config"
	"memory-assistant/internal/db"
)

// Stores agrupa los repositorios de un backend ya conectado.
type Stores struct {
	Users    UserRepository
	Sessions SessionRepository
	Memories MemoryRepository
	Answered AnsweredQuestionRepository

	ping  func(ctx context.Context) error
	close func()
}

// OpenStores conecta el backend elegido en cfg. Con postgres aplica las
// migraciones pendientes si AutoMigrate esta activo.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.StorageBackend {
	case config.BackendLocal:
		logger.Warn("using in-memory storage backend; data is lost on restart")
		return NewLocalStores(NewLocalStore()), nil
	case config.BackendPostgres:
		if cfg.AutoMigrate {
			if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
				return nil, err
			}
			logger.Info("database migrations applied")
		}
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return &Stores{
			Users:    NewPgUserRepository(pool),
			Sessions: NewPgSessionRepository(pool),
			Memories: NewPgMemoryRepository(pool),
			Answered: NewPgAnsweredQuestionRepository(pool),
			ping:     func(ctx context.Context) error { return db.Ping(ctx, pool) },
			close:    pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, cfg.StorageBackend)
}

// NewLocalStores expone un LocalStore con la forma de Stores.
func NewLocalStores(store *LocalStore) *Stores {
	return &Stores{
		Users:    store.Users(),
		Sessions: store.Sessions(),
		Memories: store.Memories(),
		Answered: store.Answered(),
		ping:     store.Ping,
		close:    func() {},
	}
}

func (s *Stores) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Stores) Close() {
	s.close()
}
