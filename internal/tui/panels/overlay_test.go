package panels

import (
	"strings"
	"testing"
)

func TestRenderVisor(t *testing.T) {
	out := RenderVisor("▁▂▃", []string{"hello there", "general"}, []OverlayLine{
		{Label: "quirky", Text: "Calibrating whiskers", Color: "#ffff00"},
		{Label: "glitch", Text: "ERR0R", Color: "#00ffff"},
	}, 40, 10)

	rows := strings.Split(out, "\n")
	if len(rows) != 10 {
		t.Fatalf("got %d rows, want 10", len(rows))
	}
	if rows[0] != "▁▂▃" {
		t.Errorf("first row should be the spectrum, got %q", rows[0])
	}
	for _, want := range []string{"hello there", "general", "quirky:", "Calibrating whiskers", "glitch:", "ERR0R"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderVisor() missing %q; got %q", want, out)
		}
	}
}

func TestRenderVisor_TruncatesToHeight(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}
	out := RenderVisor("", lines, nil, 20, 3)
	if rows := strings.Split(out, "\n"); len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}
