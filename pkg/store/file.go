package store

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/matzehuels/behave/pkg/cache"
	"github.com/matzehuels/behave/pkg/observability"
	"github.com/matzehuels/behave/pkg/token"
)

// FileStore keeps records as JSON files in a directory. Container files are
// spread over subdirectories named by the first two hex digits of the hashed
// id, so no single directory grows too large.
type FileStore struct {
	dir   string
	hooks observability.StoreHooks
}

// NewFileStore creates a file store in dir, creating the directory if it
// doesn't exist.
func NewFileStore(dir string, hooks observability.StoreHooks) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	for _, sub := range []string{"containers", "scripts"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, storageErr(err, "create %s", dir)
		}
	}
	return &FileStore{dir: dir, hooks: hooksOrNoop(hooks)}, nil
}

// LoadContainer reads a container record.
func (s *FileStore) LoadContainer(ctx context.Context, id string) (rec *token.BundleContainer, err error) {
	t := startTimer(s.hooks, BackendFile)
	defer func() { t.load(ctx, id, rec != nil, err) }()

	data, err := os.ReadFile(s.containerPath(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storageErr(err, "read container %s", id)
	}
	return decode(id, data)
}

// SaveContainer writes a container record.
func (s *FileStore) SaveContainer(ctx context.Context, rec *token.BundleContainer) (err error) {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	t := startTimer(s.hooks, BackendFile)
	defer func() { t.save(ctx, rec.ID, len(data), err) }()

	path := s.containerPath(rec.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return storageErr(err, "write container %s", rec.ID)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return storageErr(err, "write container %s", rec.ID)
	}
	return nil
}

// DeleteContainer removes a container record.
func (s *FileStore) DeleteContainer(_ context.Context, id string) error {
	return removeIfExists(s.containerPath(id))
}

// ListContainers reads every container file and returns the ids.
func (s *FileStore) ListContainers(_ context.Context) ([]string, error) {
	var ids []string
	root := filepath.Join(s.dir, "containers")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rec, err := decode(path, data)
		if err != nil {
			return err
		}
		ids = append(ids, rec.ID)
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "list containers")
	}
	slices.Sort(ids)
	return ids, nil
}

// ProvisionScript creates an empty script file.
func (s *FileStore) ProvisionScript(ctx context.Context, shallowID int) (err error) {
	t := startTimer(s.hooks, BackendFile)
	defer func() { t.save(ctx, scriptKey(shallowID), 0, err) }()
	if err := writeFileAtomic(s.scriptPath(shallowID), nil); err != nil {
		return storageErr(err, "provision script %d", shallowID)
	}
	return nil
}

// DeleteScript removes a script file.
func (s *FileStore) DeleteScript(_ context.Context, shallowID int) error {
	return removeIfExists(s.scriptPath(shallowID))
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) containerPath(id string) string {
	hash := cache.Hash([]byte(id))
	return filepath.Join(s.dir, "containers", hash[:2], hash[2:]+".json")
}

func (s *FileStore) scriptPath(shallowID int) string {
	return filepath.Join(s.dir, "scripts", strconv.Itoa(shallowID)+".script")
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return storageErr(err, "remove %s", path)
	}
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
