package main

import "github.com/bp848/mqdriven-sub004/cmd"

func main() {
	cmd.Execute()
}
