package main

import "github.com/oshokin/work-alarm/cmd/work-alarm-server/cmd"

func main() {
	cmd.Execute()
}
