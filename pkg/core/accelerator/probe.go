// Package accelerator probes for the NCore inference accelerator at process
// start and exposes the result as read-only process-wide state (spec.md
// §4.2), grounded on the teacher's original_source/server/ncore.py.
package accelerator

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/itohio/inferlite/pkg/core/gwerrors"
	"github.com/itohio/inferlite/pkg/core/logger"
)

// devicePath is the block device NCore exposes when present.
const devicePath = "/dev/ncore_pci"

var (
	once         sync.Once
	present      bool
	delegatePath string
	probeErr     error
)

// Probe runs the NCore presence check exactly once per process and caches
// the result. NCORE in the environment names the delegate shared object to
// load; its absence means no accelerator is requested and Probe reports
// present=false with a nil error regardless of what hardware exists.
func Probe() error {
	once.Do(func() {
		present, delegatePath, probeErr = probeOnce()
		if probeErr != nil {
			logger.Log.Error().Err(probeErr).Msg("accelerator probe failed")
			return
		}
		if present {
			logger.Log.Info().Str("delegate", delegatePath).Msg("NCore accelerator present")
		}
	})
	return probeErr
}

func probeOnce() (bool, string, error) {
	libPath, set := os.LookupEnv("NCORE")
	if !set {
		return false, "", nil
	}

	info, err := os.Stat(devicePath)
	if err != nil || info.Mode()&os.ModeDevice == 0 {
		return false, "", gwerrors.NewNCoreNotPresent(
			"%s: exists=%t", devicePath, err == nil)
	}

	fi, err := os.Stat(libPath)
	if err != nil || fi.IsDir() {
		return false, "", gwerrors.NewInvalidDelegateLibrary("%q doesn't seem to exist", libPath)
	}
	if filepath.Ext(libPath) != ".so" {
		return false, "", gwerrors.NewInvalidDelegateLibrary("%q doesn't appear to be a shared object", libPath)
	}

	return true, libPath, nil
}

// Present reports whether Probe found the NCore accelerator. Probe must run
// before this is meaningful; it is called from cmd/gateway's startup.
func Present() bool { return present }

// DelegatePath returns the NCore delegate shared object path, or "" when
// Present is false.
func DelegatePath() string { return delegatePath }

// reset clears the cached probe result. Test-only: production callers probe
// exactly once per process.
func reset() {
	once = sync.Once{}
	present, delegatePath, probeErr = false, "", nil
}
