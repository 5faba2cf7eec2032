package main

import "memory-assistant/internal/cli"

func main() {
	cli.Execute()
}
