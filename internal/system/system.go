package system

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ErrNoFFmpeg is returned when the ffmpeg binary is not on PATH.
var ErrNoFFmpeg = errors.New("ffmpeg not found in PATH")

// InitResourceLimits raises the open file limit; a PNG sequence export keeps
// many files in flight.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read the open file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise the open file limit: %v", err)
	}
}

// CheckFFmpeg reports whether ffmpeg can be started.
func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrNoFFmpeg
	}
	return nil
}

// BestH264Encoder picks a hardware H.264 encoder when ffmpeg offers one and
// falls back to libx264.
func BestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	// VideoToolbox first, then NVENC
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// QualityArgs maps a quality setting onto the rate control flags of an encoder.
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// 75 -> 7.5 Mbit/s
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// Host describes the machine a render runs on.
type Host struct {
	LogicalCPUs  int
	PhysicalCPUs int
	TotalMemory  uint64
	AvailMemory  uint64
}

// DescribeHost reads the host description. Fields that cannot be read stay zero.
func DescribeHost() Host {
	var h Host
	if n, err := cpu.Counts(true); err == nil {
		h.LogicalCPUs = n
	}
	if n, err := cpu.Counts(false); err == nil {
		h.PhysicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.TotalMemory = vm.Total
		h.AvailMemory = vm.Available
	}
	return h
}

// DefaultWorkers returns the rasterizer parallelism for h. Each worker holds
// one frame buffer, so the count is also capped by available memory.
func (h Host) DefaultWorkers(frameBytes int) int {
	n := h.LogicalCPUs
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if frameBytes > 0 && h.AvailMemory > 0 {
		// keep frame buffers under a quarter of free memory
		limit := int(h.AvailMemory / 4 / uint64(frameBytes))
		if limit < n {
			n = limit
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (h Host) String() string {
	return fmt.Sprintf("%d logical / %d physical CPUs, %s of %s memory free",
		h.LogicalCPUs, h.PhysicalCPUs, FormatBytes(h.AvailMemory), FormatBytes(h.TotalMemory))
}

// ResidentMemory returns the resident set size of the running process.
func ResidentMemory() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
