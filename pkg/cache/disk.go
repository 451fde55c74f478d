package cache

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// diskTier stores one JSON blob per entry, sharded into subdirectories by the
// first two hex characters of the hash to bound per-directory fan-out.
type diskTier struct {
	dir string
}

const blobExt = ".cache"

func newDiskTier(dir string) (*diskTier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &diskTier{dir: dir}, nil
}

func (d *diskTier) path(hash string) string {
	return filepath.Join(d.dir, hash[:2], hash+blobExt)
}

// read returns the blob and its modification time, used as the entry age.
func (d *diskTier) read(hash string) ([]byte, time.Time, error) {
	p := d.path(hash)
	info, err := os.Stat(p)
	if err != nil {
		return nil, time.Time{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, info.ModTime(), nil
}

func (d *diskTier) write(hash string, data []byte) error {
	p := d.path(hash)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (d *diskTier) remove(hash string) error {
	err := os.Remove(d.path(hash))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// count walks the shard directories counting blobs.
func (d *diskTier) count() (int, error) {
	shards, err := os.ReadDir(d.dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(d.dir, shard.Name()))
		if err != nil {
			return 0, err
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), blobExt) {
				n++
			}
		}
	}
	return n, nil
}

// clear deletes every blob, leaving shard directories in place.
func (d *diskTier) clear() error {
	shards, err := os.ReadDir(d.dir)
	if err != nil {
		return err
	}
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		shardDir := filepath.Join(d.dir, shard.Name())
		entries, err := os.ReadDir(shardDir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), blobExt) {
				if err := os.Remove(filepath.Join(shardDir, e.Name())); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
