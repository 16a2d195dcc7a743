package main

import "github.com/salesaice/aice-go/cmd/aice/cmd"

func main() {
	cmd.Execute()
}
