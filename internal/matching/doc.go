// Package matching finds destination-catalog equivalents for source-catalog
// entities.
//
// # Match Cache
//
// [Cache] maps source entity ids to destination ids for the duration of one
// run. A single instance is shared across the playlist, favorites, album and
// artist passes so an entity encountered in several contexts is searched at
// most once. The cache is owned by the run orchestrator and discarded when
// the run ends; nothing is persisted.
//
// # Candidate Search
//
// [Matcher] builds a query from the simplified name (plus the primary
// artist for tracks and albums), asks the destination catalog for ranked
// candidates, and accepts the first one satisfying the kind's equivalence
// rule. The service's relevance order is trusted; there is no exhaustive
// best-of-N scoring. Entities with no qualifying candidate are reported as
// misses, never as failures.
//
// # Equivalence
//
// Tracks: matching ISRC accepts immediately; otherwise the simplified,
// accent-folded names must agree, durations must be within a small
// tolerance, and at least one artist name must agree. Albums require name
// and primary-artist agreement; artists name agreement only.
package matching
