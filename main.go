package main

import "titan/cmd"

func main() {
	cmd.Main()
}
