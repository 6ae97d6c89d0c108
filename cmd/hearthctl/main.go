// hearthctl is the control CLI for a running hearthd daemon.
// It resolves the daemon's process ID from the pidfile and drives the
// lifecycle by sending signals.
package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/hearthlabs/hearthd/internal/util"
	"github.com/hearthlabs/hearthd/pkg/process"
)

const defaultPIDFile = "/run/hearthd.pid"

func main() {
	args := os.Args[1:]

	pidFile := defaultPIDFile
	for len(args) > 0 {
		if args[0] == "--pid-file" || args[0] == "-p" {
			if len(args) < 2 {
				fatal("--pid-file requires an argument")
			}
			pidFile = args[1]
			args = args[2:]
		} else if strings.HasPrefix(args[0], "--pid-file=") {
			pidFile = strings.TrimPrefix(args[0], "--pid-file=")
			args = args[1:]
		} else if args[0] == "--help" || args[0] == "-h" {
			printUsage()
			os.Exit(0)
		} else if args[0] == "--version" {
			fmt.Println("hearthctl version 0.1.0")
			os.Exit(0)
		} else {
			break
		}
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	var err error
	switch command {
	case "stop":
		err = sendSignal(pidFile, syscall.SIGTERM, "stop")
	case "quit":
		err = sendSignal(pidFile, syscall.SIGQUIT, "quit")
	case "reload":
		err = sendSignal(pidFile, syscall.SIGHUP, "reload")
	case "signal":
		if len(cmdArgs) != 1 {
			fatal("signal requires a signal name or number")
		}
		var sig syscall.Signal
		sig, err = util.ParseSignal(cmdArgs[0])
		if err == nil {
			err = sendSignal(pidFile, sig, "signal")
		}
	case "status":
		err = cmdStatus(pidFile)
	default:
		fatal("unknown command: %s", command)
	}

	if err != nil {
		fatal("%v", err)
	}
}

func sendSignal(pidFile string, sig syscall.Signal, verb string) error {
	pid, live, err := process.ReadPIDFile(pidFile)
	if err != nil {
		return err
	}
	if live != process.Alive {
		return fmt.Errorf("hearthd (pid %d) is not running", pid)
	}
	if err := unix.Kill(pid, sig); err != nil {
		return fmt.Errorf("sending %s to pid %d: %w", unix.SignalName(sig), pid, err)
	}
	fmt.Printf("Sent %s to hearthd (pid %d)\n", unix.SignalName(sig), pid)
	return nil
}

func cmdStatus(pidFile string) error {
	pid, live, err := process.ReadPIDFile(pidFile)
	if err != nil {
		return err
	}
	switch live {
	case process.Alive:
		fmt.Printf("hearthd is running (pid %d)\n", pid)
	case process.Gone:
		fmt.Printf("hearthd is not running (stale pidfile, pid %d)\n", pid)
	default:
		fmt.Printf("hearthd status unknown (pid %d)\n", pid)
	}
	return nil
}

func printUsage() {
	fmt.Println(`Usage: hearthctl [options] <command>

Commands:
  stop              request a graceful shutdown (SIGTERM)
  quit              request a graceful shutdown (SIGQUIT)
  reload            refresh disk content (SIGHUP)
  signal <sig>      send an arbitrary signal by name or number
  status            report whether the daemon is running

Options:
  -p, --pid-file <path>   pidfile location (default /run/hearthd.pid)
  -h, --help              show this help
  --version               show version`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "hearthctl: "+format+"\n", args...)
	os.Exit(1)
}
