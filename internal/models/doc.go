// Package models defines the data model for the library migration engine.
//
// Source* types mirror the shape of entities fetched from the source catalog
// and are what the snapshot format serializes. Track, Album, Artist and
// Playlist are destination-side handles: opaque identifiers plus the few
// fields the matcher compares against.
package models
