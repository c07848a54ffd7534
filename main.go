package main

import "tpv/commands"

func main() {
	commands.Execute()
}
