package sshx

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

const (
	// DefaultPort is the standard SSH port.
	DefaultPort = 22
	// DefaultUser is the username used when none is configured.
	DefaultUser = "root"

	// connectTimeout bounds the TCP dial plus SSH handshake. Freshly created
	// cloud servers can take a while to start answering, so this is generous.
	connectTimeout = 30 * time.Second
	// keepAliveInterval is how often keep-alive requests are sent on an open
	// connection to hold it through long-running remote commands.
	keepAliveInterval = 10 * time.Second
)

// ErrClosed is returned for any operation on a session after Close.
var ErrClosed = errors.New("session is closed")

// TransportError marks failures that happen before any command starts:
// authentication rejections, dial timeouts, handshake errors. These are the
// only conditions Connect reports as an error; everything after connection
// establishment is reported inside a Result.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ssh %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExecOptions configures a single remote command execution.
type ExecOptions struct {
	// Timeout bounds the command; on expiry the in-flight command is torn
	// down and a failed Result tagged as a timeout is returned. Zero means
	// no per-command timeout beyond context cancellation.
	Timeout time.Duration
	// OnStdout and OnStderr receive output lines as they arrive. All
	// buffered lines are delivered before Run returns its Result.
	OnStdout func(line string)
	OnStderr func(line string)
}

// Session owns one exclusive SSH connection to one host. It is safe for
// sequential reuse across commands; Close is terminal and idempotent.
type Session struct {
	client *ssh.Client
	addr   string

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Connect opens an authenticated SSH connection to address:port. It returns
// a *TransportError for authentication and connection failures.
func Connect(ctx context.Context, address string, port int, user string, cred Credential) (*Session, error) {
	if port == 0 {
		port = DefaultPort
	}
	if user == "" {
		user = DefaultUser
	}

	auth, err := cred.AuthMethods()
	if err != nil {
		return nil, &TransportError{Op: "auth", Err: err}
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // hosts are freshly provisioned, no known_hosts yet
		Timeout:         connectTimeout,
	}

	addr := net.JoinHostPort(address, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, &TransportError{Op: "handshake", Err: err}
	}

	s := &Session{
		client: ssh.NewClient(sshConn, chans, reqs),
		addr:   addr,
		done:   make(chan struct{}),
	}
	go s.keepAlive()
	return s, nil
}

// keepAlive sends periodic keep-alive requests until the session closes,
// holding the connection through slow cloud-init and long package installs.
func (s *Session) keepAlive() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			_, _, _ = s.client.SendRequest("keepalive@openssh.com", true, nil)
		}
	}
}

// Close tears down the connection. It is idempotent; any call on the
// session afterwards fails immediately with ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return s.client.Close()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Run executes a command and reports its outcome inside a Result. Non-zero
// exit codes and timeouts are failures inside the Result, never errors; the
// only immediate failure is running on a closed session.
func (s *Session) Run(ctx context.Context, command string, opts ExecOptions) Result {
	if s.isClosed() {
		return Failure("%v", ErrClosed)
	}

	sess, err := s.client.NewSession()
	if err != nil {
		return Failure("failed to open channel on %s: %v", s.addr, err)
	}
	defer sess.Close()

	stdout, err := sess.StdoutPipe()
	if err != nil {
		return Failure("failed to attach stdout: %v", err)
	}
	stderr, err := sess.StderrPipe()
	if err != nil {
		return Failure("failed to attach stderr: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	var streams sync.WaitGroup
	streams.Add(2)
	go drainLines(&streams, stdout, &outBuf, opts.OnStdout)
	go drainLines(&streams, stderr, &errBuf, opts.OnStderr)

	if err := sess.Start(command); err != nil {
		return Failure("failed to start command: %v", err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- sess.Wait() }()

	select {
	case <-ctx.Done():
		// Forcibly terminate the in-flight command, then let the stream
		// drains finish so no buffered output is lost.
		_ = sess.Signal(ssh.SIGKILL)
		_ = sess.Close()
		streams.Wait()
		return Result{
			Success:  false,
			ExitCode: -1,
			Stdout:   outBuf.String(),
			Stderr:   errBuf.String(),
			Message:  fmt.Sprintf("command timed out: %v", ctx.Err()),
		}
	case err = <-waitCh:
	}

	streams.Wait()

	res := Result{
		Success: err == nil,
		Stdout:  outBuf.String(),
		Stderr:  errBuf.String(),
	}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitStatus()
			res.Message = fmt.Sprintf("command exited with code %d", res.ExitCode)
		} else {
			res.ExitCode = -1
			res.Message = fmt.Sprintf("command failed: %v", err)
		}
	}
	return res
}

// drainLines copies lines from r into buf and the optional callback until
// end of stream, then marks the WaitGroup done. A scan failure (read error,
// line past the buffer cap) is recorded in the buffer instead of silently
// truncating the capture.
func drainLines(wg *sync.WaitGroup, r io.Reader, buf *bytes.Buffer, fn func(string)) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')
		if fn != nil {
			fn(line)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(buf, "[stream error: %v]\n", err)
	}
}

// Push uploads content to remotePath with the given octal mode string.
func (s *Session) Push(ctx context.Context, content []byte, remotePath, mode string) error {
	if s.isClosed() {
		return ErrClosed
	}

	sess, err := s.client.NewSession()
	if err != nil {
		return fmt.Errorf("upload %s: failed to open channel: %w", remotePath, err)
	}
	defer sess.Close()

	sess.Stdin = bytes.NewReader(content)
	if err := sess.Start(fmt.Sprintf("cat > %s", remotePath)); err != nil {
		return fmt.Errorf("upload %s: %w", remotePath, err)
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- sess.Wait() }()

	select {
	case <-ctx.Done():
		// Tear the channel down so a stalled transport cannot hold the
		// upload open past its deadline.
		_ = sess.Signal(ssh.SIGKILL)
		_ = sess.Close()
		return fmt.Errorf("upload %s: %w", remotePath, ctx.Err())
	case err = <-waitCh:
	}
	if err != nil {
		return fmt.Errorf("upload %s: %w", remotePath, err)
	}

	if mode != "" {
		if res := s.Run(ctx, fmt.Sprintf("chmod %s %s", mode, remotePath), ExecOptions{}); !res.Success {
			return fmt.Errorf("upload %s: chmod failed: %s", remotePath, res.Message)
		}
	}
	return nil
}
