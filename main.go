package main

import "github.com/ktbind-build/ktbind/cmd"

func main() {
	cmd.Execute()
}
