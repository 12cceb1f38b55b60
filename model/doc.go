// Package model defines the provider-agnostic completion abstraction agents
// are driven by.
//
// Core goals:
//   - One blocking operation: Complete(ctx, messages, options) -> text
//   - A typed failure contract (ProviderError, transient vs fatal) so loops
//     can decide between retry and termination without provider knowledge
//   - Opaque pass-through of provider options (model id, temperature, tokens)
//   - Lightweight scripting for tests (ScriptedClient)
//
// Providers (e.g. OpenAI, Anthropic) implement the Client interface from this
// package so higher layers (agents, runner) remain decoupled from vendor SDKs.
package model
