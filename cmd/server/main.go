package main

import (
	_ "time/tzdata"

	"github.com/Togather-Foundation/booking/cmd/server/cmd"
)

func main() {
	cmd.Execute()
}
