// Command genhash prints the bcrypt hash of a password read from stdin, for
// fixing an account by hand in psql.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
)

func main() {
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "genhash: no se leyó ninguna contraseña")
		os.Exit(2)
	}
	pw := strings.TrimRight(line, "\r\n")
	if len(pw) < 8 {
		fmt.Fprintln(os.Stderr, "genhash: la contraseña debe tener al menos 8 caracteres")
		os.Exit(2)
	}
	h, err := service.HashPassword(pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "genhash:", err)
		os.Exit(1)
	}
	fmt.Println(h)
}
