// Package openai implements imagegen.Generator against an OpenAI-compatible
// images endpoint (POST {base}/images/generations returning b64_json).
package openai
