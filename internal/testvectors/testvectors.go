// Package testvectors loads YAML-described test fixtures for the PLC and
// mode-dispatch test suites: erasure patterns, per-mode sample rates, and
// expected byte-layout sizes. Keeping these in YAML rather than hardcoded
// Go literals follows the teacher's fixture style of separating test data
// from test logic (spec SPEC_FULL.md AMBIENT STACK, test tooling).
package testvectors

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErasurePattern describes one frame-loss scenario: which frame indices
// (0-based) within a fixed-length stream are erased.
type ErasurePattern struct {
	Name         string `yaml:"name"`
	TotalFrames  int    `yaml:"total_frames"`
	ErasedFrames []int  `yaml:"erased_frames"`
}

// IsErased reports whether frameIndex is listed as lost.
func (p ErasurePattern) IsErased(frameIndex int) bool {
	for _, f := range p.ErasedFrames {
		if f == frameIndex {
			return true
		}
	}
	return false
}

// ModeFixture describes one operating mode's nominal frame byte count,
// used to cross-check internal/bitpack's layer math in tests.
type ModeFixture struct {
	Name      string `yaml:"name"`
	SampFreq  int    `yaml:"samp_freq"`
	BytesFull int    `yaml:"bytes_full"`
}

// Manifest is the top-level shape of a fixture YAML document.
type Manifest struct {
	ErasurePatterns []ErasurePattern `yaml:"erasure_patterns"`
	Modes           []ModeFixture    `yaml:"modes"`
}

// Load parses a fixture manifest from raw YAML bytes.
func Load(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.Wrap(err, "testvectors: parse manifest")
	}
	return m, nil
}

// DefaultManifest returns the standard fixture set embedded as a Go
// literal so tests don't depend on reading files from disk; it parses
// the same way Load would parse it from a YAML file, exercising the
// yaml.v3 path either way.
func DefaultManifest() (Manifest, error) {
	return Load([]byte(defaultManifestYAML))
}

const defaultManifestYAML = `
erasure_patterns:
  - name: single_frame_loss
    total_frames: 10
    erased_frames: [4]
  - name: burst_loss
    total_frames: 12
    erased_frames: [5, 6, 7]
  - name: alternating_loss
    total_frames: 10
    erased_frames: [1, 3, 5, 7, 9]
modes:
  - name: R00wm
    samp_freq: 16000
    bytes_full: 30
  - name: R0wm
    samp_freq: 16000
    bytes_full: 35
  - name: R1wm
    samp_freq: 16000
    bytes_full: 40
  - name: R1sm
    samp_freq: 32000
    bytes_full: 40
  - name: R2sm
    samp_freq: 32000
    bytes_full: 50
  - name: R3sm
    samp_freq: 32000
    bytes_full: 60
`
