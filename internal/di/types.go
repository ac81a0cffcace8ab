/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * shared by the HTTP server and the CLI.
 */
package di

import (
	"github.com/aristath/freefloat/internal/api"
	"github.com/aristath/freefloat/internal/clientdata"
	"github.com/aristath/freefloat/internal/clients/yahoo"
	"github.com/aristath/freefloat/internal/database"
	"github.com/aristath/freefloat/internal/metrics"
	"github.com/aristath/freefloat/internal/modules/freefloat"
	"github.com/aristath/freefloat/internal/modules/portfolio"
)

// Container holds all application dependencies
type Container struct {
	// Database (nil when the cache is disabled)
	ClientDataDB *database.DB

	// Repositories
	ClientDataRepo *clientdata.Repository

	// Clients
	YahooClient *yahoo.Client

	// Services
	Metrics  *metrics.Registry
	Resolver *freefloat.Resolver
	Builder  *portfolio.Builder
	Defaults api.Defaults
}

// Close releases the container resources.
func (c *Container) Close() error {
	if c.ClientDataDB == nil {
		return nil
	}
	return c.ClientDataDB.Close()
}
