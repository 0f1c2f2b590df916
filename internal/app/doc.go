// Package app wires nucleval's HTTP service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Configuration is loaded by the caller (config.Load)
//	2. OpenTelemetry providers and evaluation metrics are created
//	3. The evaluation service is built from the evaluation config
//	4. The chi router is assembled with the full middleware chain
//	5. The HTTP server is configured from the server config
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Active
// requests get ShutdownTimeout to finish, then telemetry is flushed.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit.
package app
