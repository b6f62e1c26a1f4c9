// Package model defines the language-model call interface consumed by leaf
// agents and provider-agnostic request/response types. Concrete backends
// live in the anthropic and openai subpackages.
package model
