// Package models lists the OpenAI models usable for reading descriptions
// aloud and for transcribing voice commands with the current API key.
package models
