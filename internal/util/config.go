package util

import "github.com/spf13/viper"

// ExclusiveKeeper returns whether marking a take as keeper clears the other
// keepers of the same version. Off by default: several takes may be kept.
func ExclusiveKeeper() bool {
	return viper.GetBool("exclusive-keeper")
}

// NetworkDB decides whether the state database gets network-filesystem
// pragmas. An explicit network-db setting wins; otherwise the mount holding
// dbPath is inspected.
func NetworkDB(dbPath string) bool {
	if viper.IsSet("network-db") {
		on := viper.GetBool("network-db")
		DebugLog("network database mode set explicitly: %v", on)
		return on
	}
	info, err := DetectMount(dbPath)
	if err != nil {
		DebugLog("mount detection for %s failed: %v", dbPath, err)
		return false
	}
	if info.Network {
		InfoLog("State database is on network storage (%s at %s), using network pragmas", info.FSType, info.MountPoint)
	}
	return info.Network
}
