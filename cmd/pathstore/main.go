package main

import (
	"github.com/pathstore/pathstore/cmd/pathstore/cmd"
)

func main() {
	cmd.Execute()
}
