package feed

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// InotifyFeed reports entries moved into root, recursively, by running
// inotifywait in monitor mode. Hidden entries are excluded at the source.
type InotifyFeed struct {
	*LineFeed
	cmd       *exec.Cmd
	stdout    *os.File
	closeOnce sync.Once
	closeErr  error
}

// NewInotifyFeed starts binary (normally "inotifywait") watching root.
func NewInotifyFeed(ctx context.Context, binary, root string) (*InotifyFeed, error) {
	if binary == "" {
		binary = "inotifywait"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-q", "-m", "-r",
		"-e", "moved_to",
		"--format", "%w%f",
		"--exclude", `/\..*`,
		root,
	)
	// The feed owns the pipe, so Wait never closes it under the reader.
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating inotifywait pipe: %w", err)
	}
	cmd.Stdout = w
	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("failed to start inotifywait: %w", err)
	}
	w.Close()

	return &InotifyFeed{LineFeed: NewLineFeed(r), cmd: cmd, stdout: r}, nil
}

// Close stops the watcher process and the feed. It returns once the reader
// has exited.
func (f *InotifyFeed) Close() error {
	f.closeOnce.Do(func() {
		f.LineFeed.Close()
		if f.cmd.Process != nil {
			f.cmd.Process.Kill()
		}
		// Wait reports the kill; only start-up style failures matter here.
		if err := f.cmd.Wait(); err != nil {
			if _, ok := err.(*exec.ExitError); !ok {
				f.closeErr = err
			}
		}
		// A descendant may still hold the write end open.
		f.stdout.Close()
		<-f.LineFeed.stopped
	})
	return f.closeErr
}
