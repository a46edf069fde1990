package layout

import (
	"strings"
	"testing"
)

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{80, 24, false},
		{79, 24, true},
		{120, 23, true},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestIsCompact(t *testing.T) {
	if !IsCompact(90, 40) {
		t.Error("IsCompact(90, 40) = false, want true")
	}
	if IsCompact(120, 40) {
		t.Error("IsCompact(120, 40) = true, want false")
	}
}

func TestRenderHeaderShowsTitleAndStatus(t *testing.T) {
	out := RenderHeader("Discussion", "⏳ 4:59", 100)
	for _, want := range []string{"MathIA", "Discussion", "⏳ 4:59"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestRenderFooterShowsHints(t *testing.T) {
	out := RenderFooter([]KeyHint{{Key: "Esc", Description: "Retour"}}, 80)
	if !strings.Contains(out, "Esc") || !strings.Contains(out, "Retour") {
		t.Errorf("footer = %q", out)
	}
}
