// Package main is the entry point for the embedded container daemon.
//
// @title           Embedded Containers API
// @version         1.0.0
// @description     REST control API for starting disposable database and broker containers for integration tests.
//
//	Each preset boots a pinned image, waits for the service to be ready, and returns its connection endpoints. The MongoDB preset comes up as an initialized single node replica set so tests can use transactions and change streams.
//
// @termsOfService  http://swagger.io/terms/
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/guttosm/embedded
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 API key for authentication. Required if authentication is enabled.
//
// @tag.name        Containers
// @tag.description Container session operations
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"

	_ "github.com/guttosm/embedded/docs" // swagger docs

	"github.com/guttosm/embedded/config"
	"github.com/guttosm/embedded/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	router, manager := app.InitializeApp(cfg)
	server := app.NewServer(router, cfg.Server.Port)

	// The daemon holds no persistent state; its containers die with it.
	server.OnShutdown(func(ctx context.Context) {
		manager.TerminateAll(ctx)
	})

	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
