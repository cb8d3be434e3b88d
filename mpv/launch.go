package mpv

import (
	"os"
	"os/exec"

	"github.com/user/clipedit-cli/deps"
)

// LaunchOptions configures the mpv process.
type LaunchOptions struct {
	// Binary is the mpv executable; "mpv" when empty.
	Binary string
	// SocketPath is the IPC socket; DefaultSocketPath when empty.
	SocketPath string
	// ExtraArgs are appended to the command line.
	ExtraArgs []string
}

// LaunchMpv starts an idle mpv with the IPC socket enabled. Media is loaded
// later over IPC. It checks that mpv is installed first and returns an error
// with install link if not. Returns the *exec.Cmd for the running process
// which can be used for cleanup.
func LaunchMpv(opts LaunchOptions) (*exec.Cmd, error) {
	binary := opts.Binary
	if binary == "" {
		binary = "mpv"
	}
	if err := deps.CheckBinary(binary, "mpv", deps.MpvInstallURL); err != nil {
		return nil, err
	}

	socket := opts.SocketPath
	if socket == "" {
		socket = DefaultSocketPath
	}
	// A stale socket from a crashed run would make the first connect fail.
	_ = os.Remove(socket)

	args := []string{
		"--input-ipc-server=" + socket,
		"--idle=yes",
		"--keep-open=yes",
		"--force-window=yes",
		"--pause",
	}
	args = append(args, opts.ExtraArgs...)
	cmd := exec.Command(binary, args...)

	// Start the process (non-blocking)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return cmd, nil
}
