package main

import "github.com/macrolab/fredmcp/cmd"

func main() {
	cmd.Execute()
}
