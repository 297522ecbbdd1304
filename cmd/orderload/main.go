package main

import "github.com/marshallshelly/pebble-orders/cmd/orderload/commands"

func main() {
	commands.Execute()
}
