// Package core defines the shared domain types flowing through the
// conversation pipeline: messages, function call intents, the normalized
// tool result contract and caller identity.
//
// Core goals:
//   - Keep message / result shapes minimal and transport independent
//   - Normalize tool results at a single boundary so every handler's output
//     carries the same required fields
//   - Stay free of provider SDK and storage dependencies so every other
//     package can import core without cycles
package core
