// Package commands holds interactive helpers shared by the ops CLI.
package commands

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// ReadPassword prompts on stderr and reads a password without echo.
// PRE: stdin is a terminal
// POST: Returns the entered password; the newline is consumed
func ReadPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// HashPassword produces a bcrypt hash suitable for the account table.
// PRE: plaintext is at least 12 characters
// POST: Returns a cost-12 bcrypt hash
func HashPassword(plaintext string) (string, error) {
	if len(plaintext) < 12 {
		return "", fmt.Errorf("password must be at least 12 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
