// Package logging builds the zap logger used across folio.
//
// The logger writes JSON or console output to stdout and, optionally, to a
// size-rotated file. Configured field names and value patterns are redacted by
// the encoder, info and below can be sampled, and context helpers attach the
// request and chat session ids to every entry:
//
//	logger, err := logging.New(cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.Info(ctx, "document ingested", zap.String("document.id", id))
//
// Services that do not need context fields take the plain *zap.Logger from
// Underlying().
package logging
