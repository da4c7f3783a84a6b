package main

import "github.com/iksnae/shopsavvy/cmd"

func main() {
	cmd.Execute()
}
