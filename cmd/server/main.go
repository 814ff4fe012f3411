package main

import "github.com/Togather-Foundation/gala/cmd/server/cmd"

func main() {
	cmd.Execute()
}
