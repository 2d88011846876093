package main

import (
	"encoding/base64"
	"fmt"
	"os"
)

// osc52 returns the terminal sequence that sets the system clipboard.
func osc52(text string) string {
	return "\033]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
}

// copyToClipboard copies text with OSC 52, writing straight to the
// controlling terminal so tcell's output buffer is bypassed.
func copyToClipboard(text string) error {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer func() { _ = tty.Close() }()

	if _, err := tty.WriteString(osc52(text)); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}
