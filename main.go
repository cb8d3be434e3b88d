package main

import "github.com/user/clipedit-cli/cmd"

func main() {
	cmd.Execute()
}
