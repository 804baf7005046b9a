//go:build darwin

package util

import (
	"fmt"
	"syscall"
)

func detectMount(path string) (*MountInfo, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem: %w", err)
	}
	fsType := int8String(stat.Fstypename[:])
	return &MountInfo{
		Network:    isNetworkFSType(fsType) || fsType == "osxfuse",
		FSType:     fsType,
		MountPoint: int8String(stat.Mntonname[:]),
	}, nil
}

// int8String converts a NUL-terminated C char array
func int8String(arr []int8) string {
	b := make([]byte, 0, len(arr))
	for _, c := range arr {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return string(b)
}
