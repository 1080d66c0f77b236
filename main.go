package main

import "github.com/user/tagging-fight-cli/cmd"

func main() {
	cmd.Execute()
}
