package main

import "github.com/sa6mwa/piperun/cmd"

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
