package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	if c.Grid[0][0] != brailleBlank|0x1 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != brailleBlank|0x80 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 0) {
		t.Error("IsSet disagrees with Set")
	}

	c.Unset(3, 3)
	if c.Grid[0][1] != brailleBlank {
		t.Errorf("expected blank cell, got %U", c.Grid[0][1])
	}

	// out of range writes are ignored
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
	if strings.Count(c.String(), string(rune(brailleBlank))) != 1 {
		t.Errorf("unexpected canvas %q", c.String())
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 11)
	if !c.IsSet(0, 0) || !c.IsSet(19, 11) {
		t.Error("line endpoints not drawn")
	}

	c.Clear()
	c.DrawLine(5, 2, 5, 2)
	if !c.IsSet(5, 2) {
		t.Error("degenerate line should draw a dot")
	}
}

func TestCanvasDisc(t *testing.T) {
	c := NewCanvas(10, 5)
	c.Disc(10, 10, 2)
	count := 0
	w, h := c.Dots()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.IsSet(x, y) {
				count++
			}
		}
	}
	if count != 13 {
		t.Errorf("expected 13 dots in a radius 2 disc, got %d", count)
	}
}

func TestCanvasResize(t *testing.T) {
	c := NewCanvas(4, 4)
	c.Set(1, 1)
	c.Resize(8, 2)
	if w, h := c.Dots(); w != 16 || h != 8 {
		t.Errorf("expected 16x8 dots, got %dx%d", w, h)
	}
	if c.IsSet(1, 1) {
		t.Error("resize should clear")
	}
	if lines := strings.Split(c.String(), "\n"); len(lines) != 2 {
		t.Errorf("expected 2 rows, got %d", len(lines))
	}
}
