// Package autoplay drives a both_automated debate to completion without
// human input.
//
// A [Driver] asks a generator for the next speech, appends the result to
// the session ledger, waits the configured delay and repeats until the
// format's speech count is reached or [Driver.Stop] is called.
//
// # States
//
//	idle ──Start──▶ armed ──issue──▶ awaiting_result ──result──▶ armed ...
//	                  │                     │
//	                  └──────Stop───────────┴──▶ stopped
//
// # Epochs
//
// Every Start, re-arm and Stop increments the driver's epoch. Timer
// callbacks and generation results carry the epoch they were created
// under and are discarded when it no longer matches, so a Stop that races
// with an in-flight generation can never append a speech afterwards.
package autoplay
