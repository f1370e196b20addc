package main

import "github.com/LiaBanuta/capstone-software-dev/cmd"

func main() {
	cmd.Execute()
}
