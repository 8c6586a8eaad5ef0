package telemetry

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/astraios/go-aocs/pkg/protocol"
)

// Linux sources for flight-computer host health.
const (
	thermalPath = "/sys/class/thermal/thermal_zone0/temp"
	loadavgPath = "/proc/loadavg"
	meminfoPath = "/proc/meminfo"
	diskRoot    = "/"
)

// readHostStatus collects CPU temperature, load, memory and disk usage
// of the flight computer. Fields that cannot be read are left zero; only
// a fully unreadable host yields an error.
func readHostStatus() (protocol.HostData, error) {
	var h protocol.HostData
	read := 0

	if temp, err := readCPUTemp(); err == nil {
		h.CPUTempC = temp
		read++
	}
	if load, err := readLoad1(); err == nil {
		h.Load1 = load
		read++
	}
	if total, free, err := readMem(); err == nil {
		h.MemTotalKB = total
		h.MemFreeKB = free
		read++
	}
	if total, free, err := readDisk(diskRoot); err == nil {
		h.DiskTotal = total
		h.DiskFree = free
		read++
	}

	if read == 0 {
		return h, fmt.Errorf("no host status sources readable")
	}
	return h, nil
}

// readCPUTemp reads the SoC temperature in degrees Celsius.
func readCPUTemp() (float64, error) {
	data, err := os.ReadFile(thermalPath)
	if err != nil {
		return 0, err
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, err
	}
	return milli / 1000.0, nil
}

// readLoad1 reads the 1-minute load average.
func readLoad1() (float64, error) {
	data, err := os.ReadFile(loadavgPath)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty loadavg")
	}
	return strconv.ParseFloat(fields[0], 64)
}

// readMem returns total and available memory in kB.
func readMem() (total, free uint64, err error) {
	data, err := os.ReadFile(meminfoPath)
	if err != nil {
		return 0, 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total, _ = strconv.ParseUint(fields[1], 10, 64)
		case "MemAvailable:":
			free, _ = strconv.ParseUint(fields[1], 10, 64)
		}
	}
	if total == 0 {
		return 0, 0, fmt.Errorf("meminfo missing MemTotal")
	}
	return total, free, nil
}

// readDisk returns total and free bytes on the filesystem at path.
func readDisk(path string) (total, free uint64, err error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bavail * bsize, nil
}
