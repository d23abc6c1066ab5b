package main

import "github.com/mcoot/factionboard/internal/cli"

func main() {
	cli.Execute()
}
