package presets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
presets:
  - name: Drivetrain
    channels:
      - "NT:/Robot/Speed"
      - "NT:/Robot/Voltage"
  - name: Vision
    channels:
      - "NT:/Field/Pose"
`

func TestLoadFromReader(t *testing.T) {
	list, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if len(list.Presets) != 2 {
		t.Fatalf("Expected 2 presets, got %d", len(list.Presets))
	}
	if list.Presets[0].Name != "Drivetrain" {
		t.Errorf("Expected Drivetrain, got %s", list.Presets[0].Name)
	}
	if len(list.Presets[0].Channels) != 2 {
		t.Errorf("Expected 2 channels, got %d", len(list.Presets[0].Channels))
	}
	if list.Presets[1].Channels[0] != "NT:/Field/Pose" {
		t.Errorf("Unexpected channel %s", list.Presets[1].Channels[0])
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(list.Presets) != 2 {
		t.Errorf("Expected 2 presets, got %d", len(list.Presets))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing name", "presets:\n  - channels: [a]\n"},
		{"duplicate name", "presets:\n  - name: x\n    channels: [a]\n  - name: x\n    channels: [b]\n"},
		{"no channels", "presets:\n  - name: x\n"},
		{"not yaml", "}{invalid"},
	}

	for _, tc := range cases {
		if _, err := LoadFromReader(strings.NewReader(tc.yaml)); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
