// Package processor wires the preferences, voice command, speech and upload
// controllers together and drives them from the CLI or the GUI. It is the
// single owner of the recognition and synthesis engines.
package processor
