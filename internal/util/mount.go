package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MountInfo describes the filesystem holding a path
type MountInfo struct {
	Network    bool   // network-mounted (NFS, SMB, sshfs, ...)
	FSType     string // filesystem type name, empty if unknown
	MountPoint string // mount point, empty if unknown
}

// networkFSTypes are substrings of filesystem type names that mean the
// storage sits behind a network round-trip
var networkFSTypes = []string{"nfs", "cifs", "smb", "ncpfs", "afpfs", "webdav", "fuse.sshfs", "fuse.rclone"}

// DetectMount reports the filesystem holding path. A path that does not
// exist yet (a database about to be created) is resolved through its
// nearest existing parent directory.
func DetectMount(path string) (*MountInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	return detectMount(existingParent(abs))
}

func existingParent(p string) string {
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}

func isNetworkFSType(fsType string) bool {
	lower := strings.ToLower(fsType)
	for _, n := range networkFSTypes {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// parseMounts reads a /proc/mounts style table into mount point -> fs type
func parseMounts(r io.Reader) (map[string]string, error) {
	mounts := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		// device mountpoint fstype options dump pass
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mounts[fields[1]] = fields[2]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mounts, nil
}

// longestMount finds the most specific mount point containing path
func longestMount(mounts map[string]string, path string) (point, fsType string) {
	for mp, typ := range mounts {
		inside := path == mp || mp == "/" || strings.HasPrefix(path, strings.TrimSuffix(mp, "/")+"/")
		if inside && len(mp) > len(point) {
			point, fsType = mp, typ
		}
	}
	return point, fsType
}
