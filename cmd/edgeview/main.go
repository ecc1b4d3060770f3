package main

import "github.com/camviz/edgeview/cmd/edgeview/commands"

func main() {
	commands.Execute()
}
