package main

import "github.com/gnames/phenogrid/cmd"

func main() {
	cmd.Execute()
}
