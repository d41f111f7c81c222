package main

import "github.com/cyp0633/tasklens/cmd/tasklens/root"

func main() {
	root.Execute()
}
