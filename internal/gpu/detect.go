package gpu

import (
	"log"
	"os"
	"os/exec"
	"sync"
)

var (
	cachedDevice string
	detectOnce   sync.Once
)

// Device returns the compute device tag for transcript metadata: "cuda" when
// an NVIDIA GPU is visible, "cpu" otherwise. Best effort; the tag has no
// behavioral effect. Uses sync.Once — safe to call multiple times.
func Device() string {
	detectOnce.Do(func() {
		cachedDevice = detect()
		log.Printf("[gpu] compute device: %s", cachedDevice)
	})
	return cachedDevice
}

func detect() string {
	if _, err := os.Stat("/proc/driver/nvidia/version"); err == nil {
		return "cuda"
	}
	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		return "cuda"
	}
	return "cpu"
}
