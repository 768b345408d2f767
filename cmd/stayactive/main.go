package main

import (
	"context"
	"os"

	"github.com/stigoleg/stayactive/internal/cli"
)

// appVersion is overridden at build time with -ldflags "-X main.appVersion=...".
var appVersion = "0.1.0-dev"

func main() {
	os.Exit(cli.Execute(context.Background(), appVersion, cli.DefaultDeps(), os.Args[1:]))
}
