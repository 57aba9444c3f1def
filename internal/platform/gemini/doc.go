// Package gemini provides an implementation of the imagegen.Generator
// interface that uses Google's Imagen models through the genai client.
//
// This package is an infrastructure adapter: it translates a prompt into a
// GenerateImages call and hands back the first image's bytes without
// exposing genai types to the rest of the application.
package gemini
