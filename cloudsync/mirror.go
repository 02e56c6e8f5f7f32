package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Mirror is the remote document store. Commit writes a batch atomically as
// far as the backend allows; List returns a whole collection.
type Mirror interface {
	Commit(ctx context.Context, docs []Document) error
	List(ctx context.Context, collection string) ([]Document, error)
}

// collections maps collection -> doc id -> document.
type collections map[string]map[string]Document

func (c collections) put(d Document) {
	if c[d.Collection] == nil {
		c[d.Collection] = make(map[string]Document)
	}
	c[d.Collection][d.ID] = d
}

func (c collections) list(collection string) []Document {
	docs := make([]Document, 0, len(c[collection]))
	for _, d := range c[collection] {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// =============================================================================
// MEMORY MIRROR
// =============================================================================

// MemoryMirror keeps documents in memory. FailOnCommit, when set, makes the
// Nth Commit call (1-based) fail without writing.
type MemoryMirror struct {
	mu           sync.Mutex
	docs         collections
	commits      []int
	FailOnCommit int
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{docs: make(collections)}
}

func (m *MemoryMirror) Commit(ctx context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	m.commits = append(m.commits, len(docs))
	if m.FailOnCommit == len(m.commits) {
		return errors.New("memory mirror: commit rejected")
	}
	for _, d := range docs {
		m.docs.put(d)
	}
	return nil
}

func (m *MemoryMirror) List(ctx context.Context, collection string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.docs.list(collection), nil
}

// CommitSizes returns the size of every Commit call so far.
func (m *MemoryMirror) CommitSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.commits...)
}

// =============================================================================
// FILE MIRROR - Local backup file, CBOR + zstd
// =============================================================================

var (
	encMode     cbor.EncMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cloudsync: CBOR encoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cloudsync: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cloudsync: zstd decoder initialization failed: " + err.Error())
	}
}

// FileMirror stores every collection in one compressed file. Each Commit
// rewrites the file through a temporary file and a rename, so a crash leaves
// either the old or the new snapshot.
type FileMirror struct {
	mu   sync.Mutex
	path string
}

func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

func (f *FileMirror) Path() string { return f.path }

func (f *FileMirror) Commit(ctx context.Context, docs []Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	all, err := f.load()
	if err != nil {
		return err
	}
	for _, d := range docs {
		all.put(d)
	}
	return f.save(all)
}

func (f *FileMirror) List(ctx context.Context, collection string) ([]Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := f.load()
	if err != nil {
		return nil, err
	}
	return all.list(collection), nil
}

func (f *FileMirror) load() (collections, error) {
	compressed, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(collections), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	raw, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	all := make(collections)
	if err := cbor.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return all, nil
}

func (f *FileMirror) save(all collections) error {
	raw, err := encMode.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	compressed := zstdEncoder.EncodeAll(raw, nil)

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp backup: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		return fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}
