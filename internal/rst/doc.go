// Package rst locates and rewrites file references inside reStructuredText sources.
//
// The package works on already materialized, newline-stripped lines and never touches
// the filesystem. Scan reports where a target path is referenced; Project turns those
// locations into per-line rewrites.
//
// Recognised reference forms:
//   - directives with a bare path: image, figure, literalinclude
//   - toctree entries
//   - inline roles :ref:, :doc: and :download:, bare or captioned, possibly wrapped
//     over several lines
//
// Paths are always relative to the file being scanned. A single leading "/" is
// accepted as equivalent and is preserved on rewrite.
package rst
