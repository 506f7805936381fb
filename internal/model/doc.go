// Package model defines the typed intermediate representation of a
// transport model: materials, surfaces, constructive solid geometry
// regions, cells, the particle source, run settings, and tallies.
//
// Objects are built once, validated, and exported to the transport
// engine's native XML input files. Nothing in this package performs
// transport; the engine is an external collaborator.
package model
