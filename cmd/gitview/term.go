package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// termStyle provides terminal styling helpers with automatic color detection
type termStyle struct {
	w         io.Writer
	useColors bool
}

func newTermStyle() *termStyle {
	return &termStyle{
		w:         os.Stdout,
		useColors: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (t *termStyle) colorize(code, text string) string {
	if !t.useColors {
		return text
	}
	return code + text + ansiReset
}

// Header prints a section header with a divider bar
func (t *termStyle) Header(title string) {
	fmt.Fprintln(t.w, t.colorize(ansiBold+ansiCyan, title))
	fmt.Fprintln(t.w, t.colorize(ansiCyan, strings.Repeat("─", len([]rune(title)))))
}

func (t *termStyle) Success(msg string) {
	fmt.Fprintln(t.w, t.colorize(ansiGreen, "✓ "+msg))
}

func (t *termStyle) Warn(msg string) {
	fmt.Fprintln(t.w, t.colorize(ansiYellow, "⚠ "+msg))
}

func (t *termStyle) Dim(text string) string    { return t.colorize(ansiDim, text) }
func (t *termStyle) Bold(text string) string   { return t.colorize(ansiBold, text) }
func (t *termStyle) Cyan(text string) string   { return t.colorize(ansiCyan, text) }
func (t *termStyle) Yellow(text string) string { return t.colorize(ansiYellow, text) }
func (t *termStyle) Green(text string) string  { return t.colorize(ansiGreen, text) }
func (t *termStyle) Red(text string) string    { return t.colorize(ansiRed, text) }

// Println prints normal text with newline
func (t *termStyle) Println(text string) {
	fmt.Fprintln(t.w, text)
}

// Printf prints formatted text
func (t *termStyle) Printf(format string, args ...any) {
	fmt.Fprintf(t.w, format, args...)
}

// KeyValue prints a key-value pair for summaries
func (t *termStyle) KeyValue(key, value string) {
	fmt.Fprintf(t.w, "  %s  %s\n", t.Bold(fmt.Sprintf("%-10s", key+":")), value)
}

// Blank prints a blank line
func (t *termStyle) Blank() {
	fmt.Fprintln(t.w)
}

// terminalSize returns the size of the terminal on stdout, or zeros when
// stdout is not one.
func terminalSize() (rows, cols uint16) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 0, 0
	}
	return uint16(h), uint16(w)
}
