package main

import "github.com/stackup-sh/stackup/cmd"

func main() {
	cmd.Execute()
}
