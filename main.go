package main

import "github.com/jdlms/fpa-forecast/cmd"

func main() {
	cmd.Execute()
}
