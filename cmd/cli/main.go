package main

import "github.com/diana-hep/femtocode/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
