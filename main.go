package main

import "github.com/iksnae/nlp-playground/cmd"

func main() {
	cmd.Execute()
}
