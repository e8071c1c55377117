//go:build !unix

package engine

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
