package main

import "eups-manifest/internal/cli"

func main() {
	cli.Execute()
}
