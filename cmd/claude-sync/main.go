package main

import "github.com/emiliopalmerini/claude-sync/internal/cli"

func main() {
	cli.Execute()
}
