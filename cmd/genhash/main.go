package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"avilegal.backend/pkg/crypto"
)

var (
	generateHashFn = crypto.HashPassword
	stdin          io.Reader = os.Stdin
	stdout         io.Writer = os.Stdout
	fatalfFn                 = log.Fatalf
)

// resolvePassword takes the first argument, falling back to one line on stdin
// so the password stays out of shell history.
func resolvePassword(args []string, in io.Reader) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("usage: genhash <password> or pipe the password on stdin")
	}
	return password, nil
}

func run(args []string) error {
	password, err := resolvePassword(args, stdin)
	if err != nil {
		return err
	}
	hash, err := generateHashFn(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fatalfFn("%v", err)
	}
}
