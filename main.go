package main

import "github.com/agentic-research/usemodel/cmd"

func main() {
	cmd.Execute()
}
