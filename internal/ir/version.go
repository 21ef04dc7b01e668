package ir

// Version constants for process documents and the generator.
const (
	// DocumentVersion is written to the version field of saved process documents.
	// Informational only; loading never rejects a document by version.
	DocumentVersion = "2.0"

	// GeneratorVersion is the liqgen code generator version.
	GeneratorVersion = "0.1.0"
)
