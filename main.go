package main

import "github.com/fleetgrid/evsched/cmd"

func main() {
	cmd.Execute()
}
