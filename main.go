package main

import "github.com/mrops-br/catalog-api/internal/cli"

func main() {
	cli.Execute()
}
