//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ServerExecutable is the base name of the daemon binary.
const ServerExecutable = "work-alarm-server"

// linuxCommLength is the length the Linux kernel truncates process names to
// (TASK_COMM_LEN minus the terminating zero).
const linuxCommLength = 15

// ExecutableName appends ".exe" on Windows.
func ExecutableName(base string) string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return base + ".exe"
	}

	return base
}

// FindProcesses returns the ids of other running processes with the given
// executable name.
func FindProcesses(executable string) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var (
		thisProcessID = os.Getpid()
		result        []int
	)

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if !matchExecutable(runtime.GOOS, process.Executable(), executable) {
			continue
		}

		result = append(result, process.Pid())
	}

	return result, nil
}

// matchExecutable compares a process name reported by the OS with an
// executable name. Linux reports at most linuxCommLength characters.
func matchExecutable(goos, reported, executable string) bool {
	if reported == executable {
		return true
	}

	if goos != "linux" || len(executable) <= linuxCommLength {
		return false
	}

	return reported == executable[:linuxCommLength]
}
