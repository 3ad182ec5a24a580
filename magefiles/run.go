//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds the binary and extracts the meshes of the default asset directory.
func (Run) Engine() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run engine...")
	if _, err := executeCmd("bin/meshdraw", withArgs("-config", "meshdraw.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
