// Package ui holds the lipgloss styling shared by CLI commands: a small [Palette] for headers and
// status marks, and [RunTable] for rendering run history.
//
// Styles degrade to plain text when output is not a terminal.
package ui
