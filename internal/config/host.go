package config

import "runtime"

// hostArch maps the running GOOS to the arch label used by dist.info's arch
// field and by manifest candidate filtering.
func hostArch() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin":
		return "Darwin"
	case "linux":
		return "Linux"
	default:
		return "Universal"
	}
}
