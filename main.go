package main

import (
	"github.com/benjaminabbitt/hostcli/cmd"
)

// VERSION will be set by the linker during build
var VERSION = "dev"

func main() {
	cmd.SetApplicationVersion(VERSION)
	cmd.Execute()
}
