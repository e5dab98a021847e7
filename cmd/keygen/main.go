// Command keygen prints fresh secrets for local development: a JWT
// signing secret for OURS_AUTH_JWT_SECRET and a few sample per-user
// encryption keys in the same encoding the register flow uses.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
)

func randomKey(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func main() {
	secret, err := randomKey(48)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generating JWT secret: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OURS_AUTH_JWT_SECRET=%s\n\n", secret)

	for i := 0; i < 3; i++ {
		key, err := randomKey(32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generating user key: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("sample user encryption key: %s\n", key)
	}
}
