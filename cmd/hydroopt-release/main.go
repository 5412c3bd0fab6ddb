package main

import "github.com/gladistony/hydroopt-release/cmd/hydroopt-release/cmd"

func main() {
	cmd.Execute()
}
