package main

import "github.com/reelplan/reelplan/internal/cli"

func main() {
	cli.Main()
}
