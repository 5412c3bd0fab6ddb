package main

import "github.com/gladistony/hydroopt-release/cmd/hydroopt-bump/cmd"

func main() {
	cmd.Execute()
}
