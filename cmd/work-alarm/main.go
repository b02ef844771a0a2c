package main

import "github.com/oshokin/work-alarm/cmd/work-alarm/cmd"

func main() {
	cmd.Execute()
}
