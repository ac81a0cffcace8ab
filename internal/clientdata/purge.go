package clientdata

import (
	"github.com/rs/zerolog"
)

// PurgeExpired drops every cache row whose TTL has passed and reports how
// many were removed.
func PurgeExpired(repo *Repository, log zerolog.Logger) (int64, error) {
	log = log.With().Str("component", "cache_purge").Logger()

	removed, err := repo.DeleteAllExpired()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, table := range AllTables {
		if n := removed[table]; n > 0 {
			log.Debug().Str("table", table).Int64("removed", n).Msg("Purged expired rows")
			total += n
		}
	}
	if total > 0 {
		log.Info().Int64("removed", total).Msg("Cache purge done")
	}
	return total, nil
}
