// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/texelvt/pty.go
// Summary: Pty child host adapting creack/pty to the core's
// non-blocking Tty contract.

package texelvt

import (
	"errors"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/framegrace/texelvt/vt"
)

// PtyTty runs a child process on a pty and exposes it as a vt.Tty.
// A reader goroutine pumps the master side into a channel so Read
// never blocks the core.
type PtyTty struct {
	cmd  *exec.Cmd
	file *os.File

	data    chan []byte
	notify  chan struct{}
	pending []byte

	mu     sync.Mutex
	status int
}

// StartPty spawns the command on a fresh pty of the given size.
func StartPty(command string, args []string, rows, cols int) (*PtyTty, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	file, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, err
	}

	t := &PtyTty{
		cmd:    cmd,
		file:   file,
		data:   make(chan []byte, 64),
		notify: make(chan struct{}, 1),
	}
	go t.pump()
	return t, nil
}

func (t *PtyTty) pump() {
	buf := make([]byte, 8192)
	for {
		n, err := t.file.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			t.data <- chunk
			t.wake()
		}
		if err != nil {
			if err != io.EOF {
				// Reading a pty whose child is gone reports EIO.
				var pathErr *os.PathError
				if !errors.As(err, &pathErr) || pathErr.Err != syscall.EIO {
					log.Printf("texelvt: pty read: %v", err)
				}
			}
			t.mu.Lock()
			t.status = t.waitStatus()
			t.mu.Unlock()
			close(t.data)
			t.wake()
			return
		}
	}
}

func (t *PtyTty) waitStatus() int {
	if err := t.cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		return -1
	}
	return 0
}

func (t *PtyTty) wake() {
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

// Notify signals that Read may have data; the host loop selects on it.
func (t *PtyTty) Notify() <-chan struct{} { return t.notify }

// Read drains buffered child output without blocking.
func (t *PtyTty) Read(p []byte) (int, error) {
	if len(t.pending) == 0 {
		select {
		case chunk, ok := <-t.data:
			if !ok {
				t.mu.Lock()
				status := t.status
				t.mu.Unlock()
				return 0, vt.ChildExited{Status: status}
			}
			t.pending = chunk
		default:
			return 0, nil
		}
	}
	n := copy(p, t.pending)
	t.pending = t.pending[n:]
	return n, nil
}

// Write sends input bytes to the child.
func (t *PtyTty) Write(p []byte) (int, error) {
	return t.file.Write(p)
}

// Resize propagates a window size change to the child.
func (t *PtyTty) Resize(rows, cols int) {
	if err := pty.Setsize(t.file, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	}); err != nil {
		log.Printf("texelvt: pty resize: %v", err)
	}
}

// Close tears the pty down and signals the child.
func (t *PtyTty) Close() {
	t.file.Close()
	if t.cmd.Process != nil {
		t.cmd.Process.Signal(syscall.SIGTERM)
	}
}
