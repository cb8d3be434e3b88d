package deps

import (
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// CheckBinary checks that binary is available, reporting it as name.
func CheckBinary(binary, name, installURL string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return &DependencyError{
			Name:       name,
			InstallURL: installURL,
		}
	}
	return nil
}

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	return CheckBinary("mpv", "mpv", MpvInstallURL)
}

// CheckFfprobe checks if ffprobe, used to read clip durations, is in PATH
func CheckFfprobe() error {
	return CheckBinary("ffprobe", "ffprobe", FfmpegInstallURL)
}

// CheckAll checks all dependencies and returns a slice of errors for missing ones.
// mpvBinary overrides the mpv executable when not empty.
func CheckAll(mpvBinary string) []error {
	var errors []error

	mpvErr := CheckMpv()
	if mpvBinary != "" {
		mpvErr = CheckBinary(mpvBinary, "mpv", MpvInstallURL)
	}
	if mpvErr != nil {
		errors = append(errors, mpvErr)
	}

	if err := CheckFfprobe(); err != nil {
		errors = append(errors, err)
	}

	return errors
}
