package main

import "github.com/andrescamacho/skirmish-economy-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
