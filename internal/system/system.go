// Package system probes the host: ffmpeg capabilities, resource limits,
// input discovery and a worker count that fits the machine.
package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	applog "github.com/ivlev/albumscript/internal/log"
)

// ScriptExts are the file extensions FindLatestScript considers.
var ScriptExts = []string{".txt", ".album", ".alb"}

// AudioExts are the file extensions FindLatestAudio considers.
var AudioExts = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}

// InitResourceLimits raises the open file limit; every segment worker holds
// pipes to its own ffmpeg.
func InitResourceLimits() {
	log := applog.WithComponent("system")
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn("не удалось получить лимит файлов", "err", err)
		return
	}
	rLimit.Cur = min(2048, rLimit.Max)
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn("не удалось установить лимит файлов", "err", err)
		return
	}
	log.Debug("лимит открытых файлов", "nofile", rLimit.Cur)
}

// FindLatest returns the most recently modified file in dir with one of exts.
func FindLatest(dir string, exts []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time
	for _, f := range files {
		if f.IsDir() || !slices.Contains(exts, strings.ToLower(filepath.Ext(f.Name()))) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}
	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %s", dir, strings.Join(exts, ", "))
	}
	return latestFile, nil
}

func FindLatestScript(dir string) (string, error) { return FindLatest(dir, ScriptExts) }
func FindLatestAudio(dir string) (string, error)  { return FindLatest(dir, AudioExts) }

// GetAudioDuration asks ffprobe for the length of a media file in seconds.
func GetAudioDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return ParseDuration(string(out))
}

// ParseDuration reads the seconds value printed by ffprobe.
func ParseDuration(out string) (float64, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	return d, nil
}

var (
	encodersOnce sync.Once
	encodersOut  string
	filtersOnce  sync.Once
	filtersOut   string
)

func ffmpegList(arg string) string {
	out, err := exec.Command("ffmpeg", "-hide_banner", arg).CombinedOutput()
	if err != nil {
		applog.WithComponent("system").Debug("ffmpeg недоступен", "arg", arg, "err", err)
		return ""
	}
	return string(out)
}

// GetBestH264Encoder picks a hardware H.264 encoder when ffmpeg has one and
// falls back to libx264.
func GetBestH264Encoder() string {
	encodersOnce.Do(func() { encodersOut = ffmpegList("-encoders") })
	return bestEncoder(encodersOut)
}

// Приоритеты: VideoToolbox (macOS), NVENC (NVIDIA), затем программный libx264
func bestEncoder(list string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if hasListEntry(list, name) {
			return name
		}
	}
	return "libx264"
}

// CheckFilterSupport reports whether the local ffmpeg has the named filter.
func CheckFilterSupport(name string) bool {
	filtersOnce.Do(func() { filtersOut = ffmpegList("-filters") })
	return hasListEntry(filtersOut, name)
}

// hasListEntry looks for name as the second column of an ffmpeg listing.
func hasListEntry(list, name string) bool {
	for _, line := range strings.Split(list, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

// DefaultQuality is the quality setting that suits each encoder.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

// bytesPerWorker is the memory budget of one segment worker: a decoded
// picture, its resized frame and the ffmpeg process.
const bytesPerWorker = 512 << 20

// RecommendedWorkers sizes the segment pool by logical CPUs and available
// memory. It never returns less than 1.
func RecommendedWorkers() int {
	cpus, err := cpu.Counts(true)
	if err != nil || cpus < 1 {
		cpus = 1
	}
	var avail uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		avail = vm.Available
	}
	return workersFor(cpus, avail)
}

func workersFor(cpus int, availMem uint64) int {
	n := cpus
	if availMem > 0 {
		n = min(n, int(availMem/bytesPerWorker))
	}
	return max(n, 1)
}
