package main

import "github.com/auranova/uebridge/internal/cmd"

func main() {
	cmd.Execute()
}
