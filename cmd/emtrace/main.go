package main

import "github.com/emtrace/emtrace/cmd/emtrace/cmd"

func main() {
	cmd.Execute()
}
