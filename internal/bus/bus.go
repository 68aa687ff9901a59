// Package bus is the control channel between the aslbridge daemon and its
// clients: a Unix socket carrying one request line and one response line.
package bus

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const (
	SockName = "control.sock"
	PidName  = "aslbridge.pid"
	ProtoVer = "0.2"
)

// Command bytes understood by the daemon.
const (
	CmdToggle  byte = 't'
	CmdMedia   byte = 'm'
	CmdStatus  byte = 's'
	CmdResult  byte = 'r'
	CmdCancel  byte = 'c'
	CmdLog     byte = 'l'
	CmdVersion byte = 'v'
	CmdQuit    byte = 'q'
)

func runtimeDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aslbridge"), nil
}

// ~/.cache/aslbridge/control.sock
func getSockPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SockName), nil
}

// ~/.cache/aslbridge/aslbridge.pid
func getPidPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PidName), nil
}

func SockPath() (string, error) {
	return getSockPath()
}

type socketManager struct {
	path string
}

func (s *socketManager) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(s.path) // stale socket from last run
	return net.Listen("unix", s.path)
}

func (s *socketManager) dial() (net.Conn, error) {
	return net.Dial("unix", s.path)
}

// send writes one request line and reads one response line.
func (s *socketManager) send(cmd byte, arg string) (string, error) {
	if strings.ContainsAny(arg, "\r\n") {
		return "", fmt.Errorf("argument must be a single line")
	}

	c, err := s.dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	line := string(cmd)
	if arg != "" {
		line += " " + arg
	}
	if _, err := fmt.Fprintf(c, "%s\n", line); err != nil {
		return "", err
	}

	return bufio.NewReader(c).ReadString('\n')
}

func defaultSocketManager() (*socketManager, error) {
	path, err := getSockPath()
	if err != nil {
		return nil, err
	}
	return &socketManager{path: path}, nil
}

func Listen() (net.Listener, error) {
	sm, err := defaultSocketManager()
	if err != nil {
		return nil, err
	}
	return sm.listen()
}

func Dial() (net.Conn, error) {
	sm, err := defaultSocketManager()
	if err != nil {
		return nil, err
	}
	return sm.dial()
}

// SendCommand sends a command without an argument.
func SendCommand(cmd byte) (string, error) {
	return SendLine(cmd, "")
}

// SendLine sends a command with an optional single-line argument.
func SendLine(cmd byte, arg string) (string, error) {
	sm, err := defaultSocketManager()
	if err != nil {
		return "", err
	}
	return sm.send(cmd, arg)
}

// ParseRequest splits a request line into its command byte and argument.
func ParseRequest(line string) (byte, string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return 0, "", false
	}
	return line[0], strings.TrimSpace(line[1:]), true
}

type pidManager struct {
	path string
}

func (p *pidManager) create() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p *pidManager) remove() error {
	return os.Remove(p.path)
}

// checkExisting fails if the pid file names a live process. Stale or
// unreadable pid files are removed.
func (p *pidManager) checkExisting() error {
	pidData, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil || !p.isProcessAlive(pid) {
		_ = os.Remove(p.path)
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d", pid)
}

func (p *pidManager) isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || err == syscall.EPERM
}

func defaultPidManager() (*pidManager, error) {
	path, err := getPidPath()
	if err != nil {
		return nil, err
	}
	return &pidManager{path: path}, nil
}

func CheckExistingDaemon() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.checkExisting()
}

func CreatePidFile() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.create()
}

func RemovePidFile() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.remove()
}
