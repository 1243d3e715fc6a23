// cmd/genhash prints a bcrypt hash for the password given as argument,
// for seeding customers by hand.
package main

import (
	"fmt"
	"os"

	"lojaesportiva/internal/infra"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <senha>")
		os.Exit(2)
	}
	h, err := infra.NewBcryptVerifier(12).Hash(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
