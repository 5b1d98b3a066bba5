package main

import "github.com/r0zar/streakwatch/internal/cli"

func main() {
	cli.Execute()
}
