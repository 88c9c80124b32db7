package dataspace

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/GriffinCanCode/AgentOS/romd/internal/domain/label"
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/capability"
)

// Open parameters for ROM files. The execute bit is requested on purpose.
const (
	OpenFlags = unix.O_RDONLY | unix.O_CLOEXEC
	OpenMode  = unix.S_IRUSR | unix.S_IXUSR
)

// HostFS gives access to the serving directory of the host file system.
type HostFS interface {
	Stat(name string) (uint64, error)
	Open(name string, flags int, mode uint32) (int, error)
	Close(fd int) error
}

// Translator turns an open descriptor into a capability and takes ownership of it.
type Translator interface {
	Translate(fd int) (capability.Capability, error)
}

// Recorder observes construction outcomes.
type Recorder interface {
	DataspaceConstructed(kind string)
	DataspaceDenied(reason string)
}

// Builder constructs file-backed dataspaces.
type Builder struct {
	fs         HostFS
	translator Translator
	logger     *zap.Logger
	recorder   Recorder
}

// NewBuilder creates a builder. A nil logger disables logging.
func NewBuilder(fs HostFS, translator Translator, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		fs:         fs,
		translator: translator,
		logger:     logger.Named("dataspace"),
	}
}

// WithRecorder sets the outcome recorder
func (b *Builder) WithRecorder(r Recorder) *Builder {
	b.recorder = r
	return b
}

// DeriveFilename extracts the ROM file name from session arguments.
func (b *Builder) DeriveFilename(args string) (Filename, error) {
	candidate := label.FromArgs(args).LastElement()

	name, err := NewFilename(candidate)
	if err == nil {
		return name, nil
	}

	var lenErr *LengthError
	switch {
	case errors.As(err, &lenErr):
		b.logger.Error("file name too long", zap.String("filename", candidate))
		return Filename{}, b.deny(ReasonNameTooLong)
	case errors.Is(err, ErrPathSeparator):
		b.logger.Warn("file name outside serving directory", zap.String("filename", candidate))
		return Filename{}, b.deny(ReasonPathSeparator)
	default:
		b.logger.Warn("invalid file name", zap.String("filename", candidate), zap.Error(err))
		return Filename{}, b.deny(ReasonInvalidByte)
	}
}

// ProbeSize returns the page-aligned size of the named file.
func (b *Builder) ProbeSize(name Filename) (uint64, error) {
	size, err := b.fs.Stat(name.String())
	if err != nil {
		b.logger.Warn("cannot stat ROM file", zap.String("filename", name.String()), zap.Error(err))
		return 0, b.deny(ReasonStat)
	}

	aligned, ok := PageAlign(size)
	if !ok {
		b.logger.Warn("ROM file size overflows", zap.String("filename", name.String()), zap.Uint64("size", size))
		return 0, b.deny(ReasonSizeOverflow)
	}
	return aligned, nil
}

// Construct builds a file-backed dataspace from session arguments. The result
// owns one open host descriptor, reachable through its capability.
func (b *Builder) Construct(args string) (*Component, error) {
	name, err := b.DeriveFilename(args)
	if err != nil {
		return nil, err
	}

	size, err := b.ProbeSize(name)
	if err != nil {
		return nil, err
	}

	fd, err := b.fs.Open(name.String(), OpenFlags, OpenMode)
	if err != nil {
		b.logger.Warn("cannot open ROM file", zap.String("filename", name.String()), zap.Error(err))
		return nil, b.deny(ReasonOpen)
	}

	c, err := b.translator.Translate(fd)
	if err != nil {
		b.logger.Error("cannot create capability for ROM file",
			zap.String("filename", name.String()),
			zap.Int("fd", fd),
			zap.Error(err),
		)
		if cerr := b.fs.Close(fd); cerr != nil {
			b.logger.Error("failed to close descriptor", zap.Int("fd", fd), zap.Error(cerr))
		}
		return nil, b.deny(ReasonCapability)
	}

	b.logger.Debug("dataspace constructed",
		zap.String("filename", name.String()),
		zap.Uint64("size", size),
		zap.Stringer("capability", c),
	)
	if b.recorder != nil {
		b.recorder.DataspaceConstructed(KindFile.String())
	}

	return &Component{
		size:    size,
		backing: FileBacking{Filename: name, Capability: c},
	}, nil
}

func (b *Builder) deny(reason string) error {
	if b.recorder != nil {
		b.recorder.DataspaceDenied(reason)
	}
	return ErrServiceDenied
}
