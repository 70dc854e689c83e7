// Package viz renders a running scene in the terminal.
//
// The live view is a Bubble Tea program that steps the scene on every tick:
//
//   - [Model]: stepping loop, per-agent trails and distance history
//   - [Canvas]: Braille pixel canvas with a world-to-screen viewport
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	S     - Single step while paused
//	Q     - Quit
package viz
