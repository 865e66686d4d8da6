// Package ui renders the nfcprofile CLI output with lipgloss: boxed
// command headers, success and failure result boxes, aligned tables, and
// y/N confirmation prompts. Wait runs a bubbletea spinner while a
// command blocks on the network.
//
// Widths follow the terminal (capped at 100 columns). When stdout is not
// a terminal, lipgloss drops colors on its own and Wait prints a
// single line instead of animating.
package ui
