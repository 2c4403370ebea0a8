// parishctl runs operational tasks against the parish database.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/parishctl migrate
//	go run ./cmd/parishctl seed-admin --username admin --password '...'
//	go run ./cmd/parishctl balance
//	go run ./cmd/parishctl kardex-export --account Main --out kardex.xlsx
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
