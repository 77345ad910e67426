package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadSecret prints prompt and reads one line without echo when stdin is
// a terminal, falling back to a plain read for piped input
func ReadSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}
	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ParseCookie accepts either the bare _pinterest_sess value or a pasted
// Cookie header and returns the session value
func ParseCookie(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "Cookie:")
	if !strings.Contains(input, "=") {
		return strings.TrimSpace(input)
	}
	for _, part := range strings.Split(input, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && name == "_pinterest_sess" {
			return strings.Trim(value, `"`)
		}
	}
	return ""
}
