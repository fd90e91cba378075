package main

import "dentalcms/cmd/dentalctl/cmd"

func main() {
	cmd.Execute()
}
