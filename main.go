package main

import "quantisuite/internal/cli"

func main() {
	cli.Execute()
}
