// Command drafterd is the Deed Drafter backend service.
package main

import "github.com/Nukpro/DeedRecreator/cmd/drafterd/cmd"

func main() {
	cmd.Execute()
}
