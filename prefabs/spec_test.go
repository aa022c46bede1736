package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// useDiskDir points on-disk overrides at a fresh temp dir for one test.
func useDiskDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := Dir
	Dir = dir
	t.Cleanup(func() { Dir = prev })
	return dir
}

func TestLoadSetEmbedded(t *testing.T) {
	useDiskDir(t)

	set, err := LoadSet()
	if err != nil {
		t.Fatalf("LoadSet: %v", err)
	}
	if set.Player.MoveSpeed != 200 || set.Player.JumpSpeed != 400 || set.Player.Bounce != 0.15 {
		t.Fatalf("player = %+v", set.Player)
	}
	if set.Player.Collider.Width != 32 || set.Player.Collider.Height != 48 {
		t.Fatalf("player collider = %+v", set.Player.Collider)
	}
	if set.Coin.Reward != 10 {
		t.Fatalf("coin reward = %d, want 10", set.Coin.Reward)
	}
	want := color.NRGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
	if got := set.Coin.Color.ColorOr(color.Black); got != want {
		t.Fatalf("coin color = %v, want %v", got, want)
	}
}

func TestDiskOverrideWins(t *testing.T) {
	dir := useDiskDir(t)
	data := "name: coin\nreward: 25\ncollider: {width: 10, height: 10}\n"
	if err := os.WriteFile(filepath.Join(dir, "coin.yaml"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	spec, err := LoadCoinSpec()
	if err != nil {
		t.Fatalf("LoadCoinSpec: %v", err)
	}
	if spec.Reward != 25 || spec.Collider.Width != 10 {
		t.Fatalf("coin = %+v, want disk override", spec)
	}
	if spec.Color.ColorOr(color.White) != color.White {
		t.Fatalf("missing color should fall back")
	}
}

func TestSpecValidation(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		data    string
		load    func() error
		wantErr string
	}{
		{
			name:    "negative_reward",
			file:    "coin.yaml",
			data:    "reward: -1\n",
			load:    func() error { _, err := LoadCoinSpec(); return err },
			wantErr: "reward must not be negative",
		},
		{
			name:    "zero_move_speed",
			file:    "player.yaml",
			data:    "move_speed: 0\njump_speed: 400\n",
			load:    func() error { _, err := LoadPlayerSpec(); return err },
			wantErr: "must be positive",
		},
		{
			name:    "bounce_too_high",
			file:    "player.yaml",
			data:    "move_speed: 200\njump_speed: 400\nbounce: 1.5\n",
			load:    func() error { _, err := LoadPlayerSpec(); return err },
			wantErr: "bounce",
		},
		{
			name:    "bad_color",
			file:    "goal.yaml",
			data:    "color: \"#12\"\n",
			load:    func() error { _, err := LoadGoalSpec(); return err },
			wantErr: "prefabs: unmarshal goal.yaml",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := useDiskDir(t)
			if err := os.WriteFile(filepath.Join(dir, c.file), []byte(c.data), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			err := c.load()
			if err == nil || !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, c.wantErr)
			}
		})
	}
}

func TestYAMLColor(t *testing.T) {
	cases := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "\"#ff8000\"", want: color.NRGBA{R: 0xff, G: 0x80, A: 0xff}},
		{in: "\"10203040\"", want: color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}},
		{in: "\"#zzzzzz\"", wantErr: true},
		{in: "[1, 2]", wantErr: true},
	}

	for _, c := range cases {
		var got YAMLColor
		err := yaml.Unmarshal([]byte(c.in), &got)
		if c.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if got.Color != c.want {
			t.Fatalf("%s = %v, want %v", c.in, got.Color, c.want)
		}
	}
}

func TestCleanPrefabPath(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"coin.yaml":         "coin.yaml",
		"prefabs/coin.yaml": "coin.yaml",
	}
	for in, want := range cases {
		if got := cleanPrefabPath(in); got != want {
			t.Fatalf("cleanPrefabPath(%q) = %q, want %q", in, got, want)
		}
	}
}
