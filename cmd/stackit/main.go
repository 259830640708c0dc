package main

import "github.com/emilythestrangee/stackit/backend/cmd/stackit/commands"

func main() {
	commands.Execute()
}
