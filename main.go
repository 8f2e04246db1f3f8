package main

import "github.com/fakeyudi/gitsim/cmd"

func main() {
	cmd.Execute()
}
