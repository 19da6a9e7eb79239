// Package internal contains the implementation packages of ks-email-parser.
//
// # Package Organization
//
//   - types: emails, documents, ordered placeholders and render targets
//   - scanner: discovery of source documents through a {locale}/{name} pattern
//   - reader: decoding of XML source documents and per-locale globals
//   - placeholder: token extraction, shape reduction, validation and the
//     cached shapes file
//   - renderer: subject, text and HTML renderers with markdown conversion,
//     CSS inlining and right-to-left wrapping
//   - build: the concurrent render pipeline, artifact writer and metrics
//   - watcher: debounced file watching
//   - config: viper-backed configuration, validation and the init wizard
//   - validation: path, URL and locale checks shared by config and scanner
//   - errors: the structured error type and the batch failure collector
//   - logging: the structured logger
//   - version: build identity
//
// # Data Flow
//
// The scanner lists emails, the placeholder store checks every locale
// against the stored shapes, the reader decodes the document, the renderers
// produce one artifact per target and the build package writes them to
// <destination>/<locale>/<name>.<target>. The watcher feeds changed paths back
// into the same pipeline.
package internal
