//go:build linux

package util

import (
	"fmt"
	"os"
	"syscall"
)

// kernel VFS magic numbers of network filesystems
var networkMagic = map[uint32]string{
	0x6969:     "nfs",
	0xff534d42: "cifs",
	0x517b:     "smb",
	0x01021994: "smbfs",
	0xfe534d42: "smb2",
	0x564c:     "ncp",
}

func detectMount(path string) (*MountInfo, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem: %w", err)
	}

	info := &MountInfo{}
	if name, ok := networkMagic[uint32(stat.Type)]; ok {
		info.Network = true
		info.FSType = name
	}

	// The mount table names FUSE filesystems the magic number cannot tell apart
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return info, nil
	}
	defer f.Close()
	mounts, err := parseMounts(f)
	if err != nil {
		return info, nil
	}

	point, fsType := longestMount(mounts, path)
	info.MountPoint = point
	if isNetworkFSType(fsType) {
		info.Network = true
		info.FSType = fsType
	} else if info.FSType == "" {
		info.FSType = fsType
	}
	return info, nil
}
