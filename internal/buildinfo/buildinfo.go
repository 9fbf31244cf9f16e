// Package buildinfo exposes the version recorded in the module build info.
package buildinfo

import "runtime/debug"

// Version reports the module version baked into the binary. Builds from a
// working tree fall back to the VCS revision when one was stamped.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 8 {
			return "devel+" + setting.Value[:8]
		}
	}
	return "devel"
}
