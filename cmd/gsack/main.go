package main

import "github.com/pfrederiksen/gsack/internal/cli"

func main() {
	cli.Execute()
}
