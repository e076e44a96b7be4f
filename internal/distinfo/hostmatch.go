package distinfo

// ArchTypeCompatible reports whether d is eligible to resolve or deploy on
// a host of hostArch/hostType: arch must be "Universal" or the host arch;
// type must be the host type, "all", or "source" (source dists build
// locally, so they are always eligible). Applied both during resolution
// (an incompatible candidate is never a suitable match) and again at
// deploy time as the authoritative check.
func ArchTypeCompatible(d *DistInfo, hostArch, hostType string) bool {
	if d.Arch != DefaultArch && d.Arch != hostArch {
		return false
	}
	if d.Type != hostType && d.Type != "all" && d.Type != "source" {
		return false
	}
	return true
}
