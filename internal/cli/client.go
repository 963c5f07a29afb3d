package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/thruflo/logo/internal/config"
	"golang.org/x/term"
)

var (
	clientAddr    string
	clientTimeout time.Duration
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Connect to a logo server and send commands from stdin",
	Long: `Connect to a logo server, print everything it sends, and forward each
line read from stdin as a command. The client exits when the server closes
the connection, after "quit" or at the end of input.

Example:
  logo client
  printf 'steps 5\nright 2\nsteps 5\nrender\n' | logo client --addr localhost:8124`,
	Args: cobra.NoArgs,
	RunE: runClient,
}

func init() {
	clientCmd.Flags().StringVarP(&clientAddr, "addr", "a",
		fmt.Sprintf("%s:%d", config.DefaultHost, config.DefaultPort), "server address")
	clientCmd.Flags().DurationVar(&clientTimeout, "timeout", 5*time.Second, "dial timeout")
	rootCmd.AddCommand(clientCmd)
}

func runClient(cmd *cobra.Command, args []string) error {
	conn, err := net.DialTimeout("tcp", clientAddr, clientTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", clientAddr, err)
	}
	defer conn.Close()

	in := cmd.InOrStdin()
	return runClientSession(conn, in, cmd.OutOrStdout(), isTerminal(in))
}

// runClientSession copies server output to out while forwarding lines from
// in with CRLF terminators. It returns once the server has closed the
// connection, even while waiting on input.
func runClientSession(conn net.Conn, in io.Reader, out io.Writer, prompt bool) error {
	copyDone := make(chan error, 1)
	go func() {
		_, err := io.Copy(out, conn)
		copyDone <- err
	}()

	done := make(chan struct{})
	defer close(done)
	lines, inputErr := readLines(in, done)

	var copyErr error
	serverClosed := false
loop:
	for {
		if prompt {
			fmt.Fprint(os.Stderr, "> ")
		}

		select {
		case line, ok := <-lines:
			if !ok {
				if err := <-inputErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				break loop
			}
			if _, err := io.WriteString(conn, line+"\r\n"); err != nil {
				// the server may already have hung up; its side of the story
				// is still in flight through the copy goroutine
				break loop
			}
			if line == "quit" || strings.TrimSpace(line) == "" {
				break loop
			}

		case copyErr = <-copyDone:
			serverClosed = true
			break loop
		}
	}

	if !serverClosed {
		// let the server see end of input, then drain what it still sends
		if cw, ok := conn.(interface{ CloseWrite() error }); ok {
			cw.CloseWrite()
		}
		copyErr = <-copyDone
	}

	if copyErr != nil && !isClosedErr(copyErr) {
		return fmt.Errorf("connection error: %w", copyErr)
	}
	return nil
}

// readLines scans in on its own goroutine so a blocked read never hides a
// server hang-up. The scan error is sent on the second channel before lines
// is closed.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimRight(scanner.Text(), "\r"):
			case <-done:
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
