package main

import "github.com/KaramelBytes/entityloom/cmd"

func main() {
	cmd.Execute()
}
