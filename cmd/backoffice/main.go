package main

import "github.com/99minutos/backoffice/cmd/backoffice/cmd"

func main() {
	cmd.Execute()
}
