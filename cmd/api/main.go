package main

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/runner/internal/app"
)

// main runs the HTTP API without the CLI, for container entrypoints.
func main() {
	fx.New(app.Module).Run()
}
