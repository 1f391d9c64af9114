package main

import "textcut/internal/cli"

func main() {
	cli.Main()
}
