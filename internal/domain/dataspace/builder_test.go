package dataspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/capability"
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/hostfs"
)

// fakeFS is an in-memory HostFS that records calls.
type fakeFS struct {
	files   map[string]uint64
	openErr error
	nextFD  int
	opened  []string
	flags   []int
	modes   []uint32
	closed  []int
}

func newFakeFS(files map[string]uint64) *fakeFS {
	return &fakeFS{files: files, nextFD: 10}
}

func (f *fakeFS) Stat(name string) (uint64, error) {
	size, ok := f.files[name]
	if !ok {
		return 0, os.ErrNotExist
	}
	return size, nil
}

func (f *fakeFS) Open(name string, flags int, mode uint32) (int, error) {
	f.opened = append(f.opened, name)
	f.flags = append(f.flags, flags)
	f.modes = append(f.modes, mode)
	if f.openErr != nil {
		return -1, f.openErr
	}
	f.nextFD++
	return f.nextFD, nil
}

func (f *fakeFS) Close(fd int) error {
	f.closed = append(f.closed, fd)
	return nil
}

type failingTranslator struct{}

func (failingTranslator) Translate(int) (capability.Capability, error) {
	return capability.Capability{}, errors.New("no capability space left")
}

type countingRecorder struct {
	constructed map[string]int
	denied      map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{constructed: map[string]int{}, denied: map[string]int{}}
}

func (r *countingRecorder) DataspaceConstructed(kind string) { r.constructed[kind]++ }
func (r *countingRecorder) DataspaceDenied(reason string)    { r.denied[reason]++ }

func labelArgs(name string) string {
	return fmt.Sprintf(`label="init -> test -> %s", ram_quota=8K`, name)
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestConstructBootModule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boot_module.bin"), make([]byte, 10), 0o644))

	table := capability.NewTable(nil)
	defer table.Close()

	b := NewBuilder(hostfs.New(dir), table, nil)
	ds, err := b.Construct(labelArgs("boot_module.bin"))
	require.NoError(t, err)

	assert.Equal(t, uint64(4096), ds.Size())
	assert.False(t, ds.Writable())
	assert.Equal(t, "boot_module.bin", ds.Filename().String())
	assert.Equal(t, KindFile, ds.Kind())
	assert.Equal(t, uint64(0), ds.BaseAddress())
	assert.Equal(t, OwnerID(""), ds.Owner())
	assert.True(t, ds.Capability().IsValid())

	fd, ok := table.Lookup(ds.Capability())
	require.True(t, ok)
	assert.GreaterOrEqual(t, fd, 0)
	assert.Equal(t, 1, table.Len())
}

func TestConstructSizeRounding(t *testing.T) {
	tests := []struct {
		name string
		size uint64
		want uint64
	}{
		{"empty file", 0, 0},
		{"one byte", 1, 4096},
		{"ten bytes", 10, 4096},
		{"exactly one page", 4096, 4096},
		{"one past a page", 4097, 8192},
		{"many pages", 3*4096 + 5, 4 * 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeFS(map[string]uint64{"rom": tt.size})
			b := NewBuilder(fs, capability.NewTable(fs.Close), nil)

			ds, err := b.Construct(labelArgs("rom"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ds.Size())
		})
	}
}

func TestConstructOpenParameters(t *testing.T) {
	fs := newFakeFS(map[string]uint64{"rom": 1})
	b := NewBuilder(fs, capability.NewTable(fs.Close), nil)

	_, err := b.Construct(labelArgs("rom"))
	require.NoError(t, err)

	require.Len(t, fs.opened, 1)
	assert.Equal(t, "rom", fs.opened[0])
	assert.Equal(t, OpenFlags, fs.flags[0])
	assert.Equal(t, uint32(0o500), fs.modes[0])
}

func TestConstructPathSeparator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b"), []byte("data"), 0o644))

	rec := newCountingRecorder()
	b := NewBuilder(hostfs.New(dir), capability.NewTable(nil), nil).WithRecorder(rec)

	ds, err := b.Construct(labelArgs("a/b"))
	assert.ErrorIs(t, err, ErrServiceDenied)
	assert.Nil(t, ds)
	assert.Equal(t, 1, rec.denied[ReasonPathSeparator])
}

func TestConstructTraversal(t *testing.T) {
	for _, name := range []string{"../etc/passwd", "/etc/passwd", "dir/", "/"} {
		t.Run(name, func(t *testing.T) {
			fs := newFakeFS(map[string]uint64{name: 1})
			b := NewBuilder(fs, capability.NewTable(fs.Close), nil)

			_, err := b.Construct(labelArgs(name))
			assert.ErrorIs(t, err, ErrServiceDenied)
			assert.Empty(t, fs.opened)
		})
	}
}

func TestConstructNameTooLong(t *testing.T) {
	long := strings.Repeat("x", 200)
	fs := newFakeFS(map[string]uint64{long: 1})
	logger, logs := newObservedLogger()
	rec := newCountingRecorder()

	b := NewBuilder(fs, capability.NewTable(fs.Close), logger).WithRecorder(rec)
	ds, err := b.Construct(labelArgs(long))

	assert.ErrorIs(t, err, ErrServiceDenied)
	assert.Nil(t, ds)
	assert.Empty(t, fs.opened)
	assert.Equal(t, 1, rec.denied[ReasonNameTooLong])

	entries := logs.FilterMessage("file name too long").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, long, entries[0].ContextMap()["filename"])
}

func TestConstructCapacityBoundary(t *testing.T) {
	fits := strings.Repeat("a", FilenameCapacity-1)
	tooLong := strings.Repeat("a", FilenameCapacity)
	fs := newFakeFS(map[string]uint64{fits: 1, tooLong: 1})
	b := NewBuilder(fs, capability.NewTable(fs.Close), nil)

	ds, err := b.Construct(labelArgs(fits))
	require.NoError(t, err)
	assert.Equal(t, FilenameCapacity-1, ds.Filename().Len())

	_, err = b.Construct(labelArgs(tooLong))
	assert.ErrorIs(t, err, ErrServiceDenied)
}

func TestConstructMissingFile(t *testing.T) {
	logger, logs := newObservedLogger()
	rec := newCountingRecorder()
	b := NewBuilder(hostfs.New(t.TempDir()), capability.NewTable(nil), logger).WithRecorder(rec)

	ds, err := b.Construct(labelArgs("missing.rom"))
	assert.ErrorIs(t, err, ErrServiceDenied)
	assert.Nil(t, ds)
	assert.Equal(t, 1, rec.denied[ReasonStat])

	// the client only sees the uniform error; the cause stays in the log
	assert.Equal(t, ErrServiceDenied.Error(), err.Error())
	assert.Equal(t, 1, logs.FilterMessage("cannot stat ROM file").Len())
}

func TestConstructMissingLabel(t *testing.T) {
	b := NewBuilder(hostfs.New(t.TempDir()), capability.NewTable(nil), nil)

	_, err := b.Construct("ram_quota=8K")
	assert.ErrorIs(t, err, ErrServiceDenied)
}

func TestConstructOpenFailure(t *testing.T) {
	fs := newFakeFS(map[string]uint64{"rom": 1})
	fs.openErr = os.ErrPermission
	rec := newCountingRecorder()

	b := NewBuilder(fs, capability.NewTable(fs.Close), nil).WithRecorder(rec)
	_, err := b.Construct(labelArgs("rom"))

	assert.ErrorIs(t, err, ErrServiceDenied)
	assert.NotErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, 1, rec.denied[ReasonOpen])
}

func TestConstructTranslationFailureClosesDescriptor(t *testing.T) {
	fs := newFakeFS(map[string]uint64{"rom": 1})
	rec := newCountingRecorder()

	b := NewBuilder(fs, failingTranslator{}, nil).WithRecorder(rec)
	ds, err := b.Construct(labelArgs("rom"))

	assert.ErrorIs(t, err, ErrServiceDenied)
	assert.Nil(t, ds)
	assert.Equal(t, []int{11}, fs.closed)
	assert.Equal(t, 1, rec.denied[ReasonCapability])
	assert.Empty(t, rec.constructed)
}

func TestConstructSizeOverflow(t *testing.T) {
	fs := newFakeFS(map[string]uint64{"huge": ^uint64(0)})
	b := NewBuilder(fs, capability.NewTable(fs.Close), nil)

	_, err := b.Construct(labelArgs("huge"))
	assert.ErrorIs(t, err, ErrServiceDenied)
	assert.Empty(t, fs.opened)
}

func TestConstructRecordsSuccess(t *testing.T) {
	fs := newFakeFS(map[string]uint64{"rom": 1})
	rec := newCountingRecorder()

	b := NewBuilder(fs, capability.NewTable(fs.Close), nil).WithRecorder(rec)
	_, err := b.Construct(labelArgs("rom"))
	require.NoError(t, err)

	assert.Equal(t, 1, rec.constructed["file"])
	assert.Empty(t, rec.denied)
}

func TestDeriveFilename(t *testing.T) {
	b := NewBuilder(newFakeFS(nil), capability.NewTable(nil), nil)

	name, err := b.DeriveFilename(`label="init -> config"`)
	require.NoError(t, err)
	assert.Equal(t, "config", name.String())

	name, err = b.DeriveFilename(`label="plain.rom"`)
	require.NoError(t, err)
	assert.Equal(t, "plain.rom", name.String())

	_, err = b.DeriveFilename("label=\"init -> nul\x00byte\"")
	assert.ErrorIs(t, err, ErrServiceDenied)
}

func TestProbeSize(t *testing.T) {
	fs := newFakeFS(map[string]uint64{"rom": 4097})
	b := NewBuilder(fs, capability.NewTable(nil), nil)

	name, err := NewFilename("rom")
	require.NoError(t, err)

	size, err := b.ProbeSize(name)
	require.NoError(t, err)
	assert.Equal(t, uint64(8192), size)

	other, err := NewFilename("other")
	require.NoError(t, err)
	_, err = b.ProbeSize(other)
	assert.ErrorIs(t, err, ErrServiceDenied)
}
