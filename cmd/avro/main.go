package main

import "github.com/rdblue/avro/cmd/avro/cmd"

func main() {
	cmd.Execute()
}
