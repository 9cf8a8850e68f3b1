// Command tokengen mints an editor token and prints the hash to place in
// auth.editor_token_hashes.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/ganot/showcase/internal/transport"
)

func main() {
	hashOnly := flag.String("hash", "", "print the hash of an existing token instead of minting one")
	size := flag.Int("bytes", 32, "random bytes in a minted token")
	flag.Parse()

	if err := run(os.Stdout, rand.Reader, *hashOnly, *size); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, random io.Reader, existing string, size int) error {
	token := existing
	if token == "" {
		var err error
		token, err = mint(random, size)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", color.CyanString("token:"), token)
	}
	fmt.Fprintf(out, "%s  %s\n", color.CyanString("hash:"), transport.HashToken(token))
	if existing == "" {
		fmt.Fprintln(out, color.HiBlackString("Keep the token secret. Add the hash to SHOWCASE_EDITOR_TOKEN_HASHES."))
	}
	return nil
}

func mint(random io.Reader, size int) (string, error) {
	if size < 16 {
		return "", fmt.Errorf("token needs at least 16 bytes, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
