package main

import "github.com/ZanzyTHEbar/public-interest-o-meter/internal/cli"

func main() {
	cli.Execute()
}
