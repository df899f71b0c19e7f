package main

import "github.com/notargets/goshock/cmd"

func main() {
	cmd.Execute()
}
