// Package placeholder keeps every locale of an email consistent.
//
// Source documents are scanned textually for {{name}} tokens (Extract), the
// per-locale counts of one email are reduced to its expected shape (Reduce),
// and each locale is checked against that shape (Validate). Shapes for a
// whole source tree are persisted in placeholders_config.json next to the
// sources and read back through a Store, which memoises the file per source
// root until it is regenerated or explicitly invalidated.
package placeholder
