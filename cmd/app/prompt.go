package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/starford/streammark/internal/logbook"
)

var assumeYes = logbook.ConfirmFunc(func(string) bool { return true })

// newPrompt asks a y/N question on out and reads the answer from in.
// Anything but "y" or "yes" declines, including EOF.
func newPrompt(in io.Reader, out io.Writer) logbook.Confirmer {
	return logbook.ConfirmFunc(func(question string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", question)
		line, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}
