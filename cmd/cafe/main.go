package main

import "github.com/Skotchmaster/online_cafe/cmd/cafe/commands"

func main() {
	commands.Execute()
}
