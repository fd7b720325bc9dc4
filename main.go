package main

import "github.com/Digital-Shane/moviegrabber/internal/cmd"

func main() {
	cmd.Execute()
}
