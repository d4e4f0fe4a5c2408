package main

import "github.com/philipparndt/printview/cmd"

func main() {
	cmd.Execute()
}
