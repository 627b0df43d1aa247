// Package logger wraps zap with a global sugared logger, context helpers
// (ToContext/FromContext/WithName/WithKV) and level parsing.
//
// Pipeline steps take a context and log through it, so a run id or component
// name attached once shows up on every line the step writes.
package logger
