// Package core provides the foundational domain types shared by every part of
// Reagent. It defines:
//
//   - Messages (immutable turn records with role, content and tool metadata)
//   - Conversations (ordered, append-only logs with snapshot semantics)
//   - Run results (final text, iteration count, termination reason)
//
// The package intentionally keeps implementation concerns (model providers,
// tool dispatch, agent loops) out of scope so that higher layers can depend on
// a small, stable vocabulary without cyclic imports.
package core
