package main

import "github.com/geulmoi/geulssaem/cmd"

func main() {
	cmd.Execute()
}
