// Package httpserver runs an HTTP server with graceful shutdown.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Run returns when ctx is cancelled or the process receives SIGINT/SIGTERM.
// LivenessHandler and ReadinessHandler serve the usual probe endpoints.
package httpserver
