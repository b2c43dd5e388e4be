package main

import "github.com/agentic-research/mdsql/cmd"

func main() {
	cmd.Execute()
}
