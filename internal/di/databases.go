package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/freefloat/internal/clientdata"
	"github.com/aristath/freefloat/internal/config"
	"github.com/aristath/freefloat/internal/database"
)

// InitializeDatabases opens the market data cache and applies its schema.
// With the cache disabled the container has no database.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}
	if !cfg.CacheEnabled {
		log.Info().Msg("Market data cache disabled")
		return container, nil
	}

	// client_data.db - Cached Yahoo responses with TTL
	clientDataDB, err := database.New(database.Config{
		Path:    cfg.CachePath(),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client_data database: %w", err)
	}

	if err := clientDataDB.Migrate(); err != nil {
		clientDataDB.Close()
		return nil, fmt.Errorf("failed to migrate client_data database: %w", err)
	}

	container.ClientDataDB = clientDataDB
	container.ClientDataRepo = clientdata.NewRepository(clientDataDB.Conn())

	if _, err := clientdata.PurgeExpired(container.ClientDataRepo, log); err != nil {
		log.Warn().Err(err).Msg("Failed to purge expired cache entries")
	}

	log.Info().Str("path", cfg.CachePath()).Msg("Market data cache ready")
	return container, nil
}
