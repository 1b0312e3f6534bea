package main

import "github.com/iamkaf/dirty/cmd"

func main() {
	cmd.Execute()
}
