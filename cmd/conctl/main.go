package main

import (
	"github.com/robotalks/console.go/pkg/cli/sh"
	env "github.com/robotalks/console.go/pkg/wire/env/client"

	_ "github.com/robotalks/console.go/pkg/cli/cmds/console"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
