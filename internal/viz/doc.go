// Package viz draws the stage in a terminal.
//
// Frames reach the viewer through a [FrameSink] registered as a driver
// observer. [Render] projects every body through a [Camera] onto a braille
// [Canvas]; [Model] wraps this in a Bubble Tea program with a status panel.
//
// # Key Bindings
//
//	Space - Pause/Resume the view
//	+/-   - Zoom
//	f/F   - Halve/double friction
//	H     - Show hidden rope braces
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help
//
// Canvases can also be exported with [CanvasToSVG].
package viz
