// Package manifest records what an export handed to the host framework: which
// configuration (by content hash), which plugins in which order, and which files.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExportManifest represents a complete record of one export's inputs and outputs.
type ExportManifest struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	Source     string            `json:"source"`
	ConfigHash string            `json:"config_hash"`
	Site       Site              `json:"site"`
	Plugins    []PluginRef       `json:"plugins"`
	Outputs    map[string]string `json:"outputs,omitempty"` // file name -> sha256
}

// Site summarizes the exported site metadata.
type Site struct {
	Title   string `json:"title"`
	SiteURL string `json:"site_url"`
	Social  int    `json:"social_links"`
}

// PluginRef is one plugin in initialization order.
type PluginRef struct {
	Resolve string `json:"resolve"`
	Type    string `json:"type"`
}

// New creates a manifest with a fresh ID and the current UTC time.
func New(version, source string) *ExportManifest {
	return &ExportManifest{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Version:   version,
		Source:    source,
		Plugins:   []PluginRef{},
		Outputs:   map[string]string{},
	}
}

// AddOutput records the content hash of an exported file.
func (m *ExportManifest) AddOutput(name string, data []byte) {
	if m.Outputs == nil {
		m.Outputs = map[string]string{}
	}
	m.Outputs[name] = HashBytes(data)
}

// ToJSON serializes the manifest to JSON.
func (m *ExportManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*ExportManifest, error) {
	var m ExportManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return nil, fmt.Errorf("manifest id %q: %w", m.ID, err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest's config hash and plugin list.
// Two exports of an identical configuration have the same hash regardless of ID,
// timestamp or output format.
func (m *ExportManifest) Hash() (string, error) {
	hashInput := struct {
		ConfigHash string      `json:"config_hash"`
		Plugins    []PluginRef `json:"plugins"`
	}{
		ConfigHash: m.ConfigHash,
		Plugins:    m.Plugins,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return HashBytes(data), nil
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}
