package main

import "github.com/lukman83/bazenda-cli/cmd"

func main() {
	cmd.Execute()
}
