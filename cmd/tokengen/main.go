// tokengen mints a signed access token for a numeric user id. It stands in
// for the external login service during development and testing; the room
// server itself never issues tokens.
//
// Usage:
//
//	go run ./cmd/tokengen -user 42
//	go run ./cmd/tokengen -user 42 -minutes 5
package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/momentchat/moment/internal/auth"
)

func main() {
	user := flag.Int64("user", 0, "numeric user id to embed in the sub claim")
	minutes := flag.Int("minutes", 0, "override token lifetime in minutes")
	flag.Parse()

	if *user <= 0 {
		fmt.Fprintln(os.Stderr, "error: -user must be a positive user id")
		flag.Usage()
		os.Exit(1)
	}

	auth.Init()
	if *minutes > 0 {
		auth.TokenExpireMinutes = *minutes
	}

	token, err := auth.CreateJWT(*user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
