// Package processfile reads and writes process documents.
//
// A process document is JSON (or YAML with the same shape). Documents are
// checked against an embedded JSON Schema, then decoded into IR by the
// strict step decoder in package ir. Documents saved by the original
// desktop tool use Chinese step tags and option values; they are rewritten
// to the current tags before validation.
package processfile
