package testvectors

import "testing"

func TestDefaultManifestParses(t *testing.T) {
	m, err := DefaultManifest()
	if err != nil {
		t.Fatalf("DefaultManifest: %v", err)
	}
	if len(m.ErasurePatterns) == 0 {
		t.Fatalf("expected at least one erasure pattern")
	}
	if len(m.Modes) != 6 {
		t.Fatalf("expected 6 operating modes, got %d", len(m.Modes))
	}
}

func TestErasurePatternIsErased(t *testing.T) {
	m, err := DefaultManifest()
	if err != nil {
		t.Fatalf("DefaultManifest: %v", err)
	}
	var burst ErasurePattern
	for _, p := range m.ErasurePatterns {
		if p.Name == "burst_loss" {
			burst = p
		}
	}
	if burst.Name == "" {
		t.Fatalf("expected burst_loss pattern in default manifest")
	}
	if !burst.IsErased(6) {
		t.Fatalf("expected frame 6 erased in burst_loss")
	}
	if burst.IsErased(0) {
		t.Fatalf("expected frame 0 not erased in burst_loss")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load([]byte("not: [valid yaml")); err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}
