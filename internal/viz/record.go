package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strconv"
)

var ErrNoFrames = errors.New("viz: nothing recorded")

// Recorder collects canvas snapshots into an animated GIF.
type Recorder struct {
	// DotSize is the edge of one braille dot in pixels.
	DotSize int
	// Delay between frames in hundredths of a second.
	Delay   int
	palette color.Palette
	frames  []*image.Paletted
}

func NewRecorder(t Theme, fps int) *Recorder {
	delay := 100 / max(fps, 1)
	return &Recorder{
		DotSize: 3,
		Delay:   max(delay, 2),
		palette: color.Palette{parseHex(string(t.Background)), parseHex(string(t.Figure))},
	}
}

func (r *Recorder) Len() int { return len(r.frames) }

func (r *Recorder) Capture(c *Canvas) {
	w, h := c.Dots()
	s := r.DotSize
	img := image.NewPaletted(image.Rect(0, 0, w*s, h*s), r.palette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < s; py++ {
				for px := 0; px < s; px++ {
					img.SetColorIndex(x*s+px, y*s+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save writes the recording to path and clears it.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	r.frames = nil
	return f.Close()
}

// parseHex reads "#rrggbb"; anything else is white.
func parseHex(hex string) color.RGBA {
	white := color.RGBA{255, 255, 255, 255}
	if len(hex) != 7 || hex[0] != '#' {
		return white
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return white
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}
