package main

import "github.com/rasterloc/rasterloc/cmd/rasterloc/cmd"

func main() {
	cmd.Execute()
}
