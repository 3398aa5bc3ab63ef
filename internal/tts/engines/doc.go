// Package engines contains the model collaborators: a client for an
// OpenAI-compatible mlx-audio speech server and an in-process mock.
// Both implement tts.Loader.
package engines
