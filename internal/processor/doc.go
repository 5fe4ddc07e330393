// Package processor wires a translation run together from the command-line
// flags and the configuration snapshot: it builds the translation backend,
// the target window source, the recognizer and the overlay surface, seeds
// the cache from a glossary and runs the pipeline until it stops.
package processor
