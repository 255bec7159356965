package main

import "github.com/Digital-Shane/cinemabot/internal/cmd"

func main() {
	cmd.Execute()
}
