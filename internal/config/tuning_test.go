package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if got.Player.JumpForce != Default().Player.JumpForce {
		t.Fatalf("jump force = %v, want default", got.Player.JumpForce)
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	data := "player:\n  jump_force: 45\nlevel:\n  row_subdivisions: 4\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Player.JumpForce != 45 {
		t.Errorf("jump force = %v, want 45", got.Player.JumpForce)
	}
	if got.Level.RowSubdivisions != 4 {
		t.Errorf("row subdivisions = %d, want 4", got.Level.RowSubdivisions)
	}
	if got.Player.Gravity != Default().Player.Gravity {
		t.Errorf("gravity = %v, want untouched default", got.Player.Gravity)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	data := "aim:\n  slow_motion_scale: 2\nlevel:\n  safety_factor: 1.5\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"aim.slow_motion_scale", "level.safety_factor"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateBiomes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *Biomes)
		want   string
	}{
		{"empty", func(b *Biomes) { b.Zones = nil }, "must not be empty"},
		{"unordered", func(b *Biomes) { b.Zones[1].DepthLimit = b.Zones[0].DepthLimit }, "must exceed"},
		{"finite last", func(b *Biomes) { b.Zones[len(b.Zones)-1].DepthLimit = 1e9 }, ".inf"},
		{"chance overflow", func(b *Biomes) {
			b.Zones[0].Chances = map[string]float64{"ice": 0.7, "moving_x": 0.6}
		}, "above 1"},
		{"negative chance", func(b *Biomes) {
			b.Zones[0].Chances = map[string]float64{"ice": -0.1}
		}, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := Default()
			tt.mutate(&tuning.Biomes)
			err := tuning.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestValidateKeepsRowsReachable(t *testing.T) {
	tuning := Default()
	tuning.Level.MovingAmplitude = 400
	err := tuning.Validate()
	if err == nil || !strings.Contains(err.Error(), "jump reach") {
		t.Fatalf("Validate() = %v, want a reachability error", err)
	}

	tuning = Default()
	tuning.Player.Gravity = 8000
	if err := tuning.Validate(); err == nil || !strings.Contains(err.Error(), "jump reach") {
		t.Fatalf("Validate() = %v, heavier gravity shrinks the reach below the default widths", err)
	}
}
