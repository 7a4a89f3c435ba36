package container

import (
	"io"

	"github.com/docker/docker/pkg/stdcopy"
)

// demux splits Docker's multiplexed stream into stdout and stderr.
func demux(stdout, stderr io.Writer, r io.Reader) error {
	if stderr == nil {
		stderr = stdout
	}
	_, err := stdcopy.StdCopy(stdout, stderr, r)
	return err
}

// Demux is the exported form used by CLI log streaming.
func Demux(stdout, stderr io.Writer, r io.Reader) error {
	return demux(stdout, stderr, r)
}
