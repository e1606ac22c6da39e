package main

import "github.com/imedbrahmi/hospital_backend/cmd"

func main() {
	cmd.Execute()
}
