package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

const (
	envPassword    = "HUB_PASSWORD"
	envNewPassword = "HUB_NEW_PASSWORD"
)

var errMismatch = errors.New("passwords do not match")

// passwordSource reads passwords from the environment, a terminal without
// echo, or line by line from piped input.
type passwordSource struct {
	in     *bufio.Reader
	fd     int
	out    io.Writer
	getenv func(string) string
}

func (p *passwordSource) isTerminal() bool {
	return p.fd >= 0 && term.IsTerminal(p.fd)
}

func (p *passwordSource) read(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if p.isTerminal() {
		b, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Current returns the existing password.
func (p *passwordSource) Current() (string, error) {
	if v := p.getenv(envPassword); v != "" {
		return v, nil
	}
	return p.read("Current password: ")
}

// New returns a new password, asking twice when it is typed in.
func (p *passwordSource) New(envKey string) (string, error) {
	if v := p.getenv(envKey); v != "" {
		return v, nil
	}
	pw, err := p.read("New password: ")
	if err != nil {
		return "", err
	}
	confirm, err := p.read("Confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", errMismatch
	}
	return pw, nil
}
