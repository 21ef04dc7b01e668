package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProcess  = "liqgen/process/v1"
	DomainArtifact = "liqgen/artifact/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProcessHash computes the content hash of a process.
// Only name, description and steps take part; created_time and version are
// metadata, so re-saving an unchanged process keeps its hash.
func ProcessHash(p *Process) (string, error) {
	content := struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Steps       StepList `json:"steps"`
	}{p.Name, p.Description, p.Steps}

	canonical, err := MarshalCanonical(content)
	if err != nil {
		return "", fmt.Errorf("ProcessHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProcess, canonical), nil
}

// ArtifactHash computes the content hash of generated code.
func ArtifactHash(format, code string) string {
	return hashWithDomain(DomainArtifact, []byte(format+"\x00"+code))
}

// MustProcessHash is like ProcessHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProcessHash(p *Process) string {
	h, err := ProcessHash(p)
	if err != nil {
		panic(err)
	}
	return h
}
