package main

import "github.com/inovacc/bidmatch/cmd"

func main() {
	cmd.Execute()
}
