// Package session stores conversation histories by session ID so agents can
// continue a dialogue across runs. The Store interface is deliberately small
// and the in-memory implementation is the only one shipped, matching the
// in-session scope of the rest of the module.
//
// Add additional backends (Redis, Postgres, Firestore, etc.) in sub‑packages
// without changing any calling code – only the wiring layer needs to decide
// which implementation to instantiate.
package session
