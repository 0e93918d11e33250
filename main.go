package main

import "github.com/frahmantamala/admin-dashboard/cmd"

func main() {
	cmd.Execute()
}
