package main

import "github.com/gaurav-prasanna/examsplit/cmd"

func main() {
	cmd.Execute()
}
