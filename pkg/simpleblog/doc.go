// Package simpleblog provides a read-only accessor over a static collection
// of blog posts, loaded once from a pluggable Source.
//
// The collection is read and resolved a single time, when Load returns. After
// that the Accessor never changes: every query returns fresh copies, so a
// shared Accessor is safe to use from any number of goroutines without
// locking. Sources for the common backing stores (memory, filesystem, S3,
// Postgres, Markdown directories) live under the source subpackages.
//
// # Wire Format
//
// Records mirror the JSON documents written by the publishing workflow.
// Two fields are variants on the wire: author (a display name or an
// object with name/avatar/role) and readingTime (minutes, or a preformatted
// string). Both are resolved to a single canonical shape on Post so that
// query code never inspects the wire variant.
package simpleblog
