// Package models lists the models an OpenAI-compatible translation engine
// (Groq or a local inference server) offers, so users can pick one for
// groq.model or local.model.
package models
