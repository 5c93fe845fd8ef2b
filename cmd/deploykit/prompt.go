package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompt plumbing sits behind package vars so tests can substitute
// stdin and terminal detection.
var (
	stdinReader     io.Reader = os.Stdin
	stdinIsTerminal           = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readPassword              = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

// readLine reads a single line from stdin, tolerating a missing final
// newline and trimming a CR before it.
func readLine() (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := stdinReader.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
	}
	return strings.TrimSuffix(sb.String(), "\r"), nil
}

// confirm asks a yes/no question. An empty answer selects def; anything
// other than yes declines.
func confirm(question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Printf("%s %s ", question, hint)

	answer, err := readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// promptLine asks for a value, returning def when the answer is empty.
func promptLine(label, def string) (string, error) {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	answer, err := readLine()
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// promptSecret reads a value without echoing it on a terminal. Piped
// stdin falls back to a plain line read.
func promptSecret(label string) (string, error) {
	fmt.Printf("%s: ", label)
	if stdinIsTerminal() {
		b, err := readPassword()
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	answer, err := readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
