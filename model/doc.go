// Package model defines the provider-agnostic abstractions for interacting
// with language models inside the conversation engine.
//
// Core goals:
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so the gateway and summarizer remain decoupled from vendor SDKs.
package model
