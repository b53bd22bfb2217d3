package main

import "github.com/pders01/timewarp/cmd"

func main() {
	cmd.Execute()
}
