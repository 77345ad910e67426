// Package logger wraps zerolog behind a small interface used by every
// component of a harvest run.
//
// The global logger is set up once from the logging section of the config:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("board", "cats").Info("harvest started")
//
// Components take a Logger in their constructors so tests can pass
// NewTestLogger() and assert on the captured messages, or NewNopLogger()
// when they do not care.
package logger
