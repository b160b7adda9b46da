package main

import "github.com/baskets-dev/baskets-go/cmd"

func main() {
	cmd.Execute()
}
