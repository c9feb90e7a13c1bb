// Package logx configures tasque's structured logging.
//
// A small wrapper (logx.Logger) on top of zerolog keeps:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Library packages free of sink wiring (the zero Logger is a no-op)
package logx
