package main

import "github.com/luthersystems/yalp/cmd"

func main() {
	cmd.Execute()
}
