package main

import "github.com/markb/socialite/cmd"

func main() {
	cmd.Execute()
}
