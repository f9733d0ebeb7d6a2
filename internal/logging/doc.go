// Package logging wires log/slog with the console and JSON handlers used
// across the reelbase CLI.
//
// Components obtain loggers through NewComponentLogger so every record
// carries a stable component attribute, and the attr helpers keep call sites
// terse. The console handler colorizes output only when attached to a TTY.
package logging
