// Package logger builds slog loggers with functional options and injects
// request-scoped attributes from context.Context.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "credkitd"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "user created", logger.UserID(uid), logger.Component("auth"))
//
// The attribute helpers in attr.go keep key names consistent across packages.
package logger
