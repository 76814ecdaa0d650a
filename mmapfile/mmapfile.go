// Package mmapfile provides memory-mapped file access for the bulk
// data paths of the sync engine: archive extraction and large single
// file transfer. It wraps github.com/edsrzf/mmap-go for the raw
// map/flush/unmap calls and adds windowed remapping so files larger
// than a single mapping still work on platforms that cap mapping
// sizes.
package mmapfile

import (
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// chunkSize bounds a single mmap region. Very large files are mapped
// in successive windows of roughly this size rather than in one huge
// mapping.
const chunkSize = 1 << 30

// File is a memory-mapped view over an on-disk file, read-only or
// read-write. ReadAt and WriteAt move the current window as needed.
type File struct {
	f        *os.File
	region   mmap.MMap
	base     int64 // file offset of region[0]
	size     int64 // total file size
	writable bool
	closed   bool
}

// Open maps path for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mmapfile: open %q", path)
	}
	return newFile(f, false)
}

// Create truncates (or creates) path to size bytes and maps it for
// read-write access — the path used by the archive extractor for a
// fresh ".janus-sync-tmp" target and by UploadFile's receiver.
func Create(path string, size int64, perm os.FileMode) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, errors.Wrapf(err, "mmapfile: create %q", path)
	}
	if size > 0 {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "mmapfile: truncate %q to %d", path, size)
		}
	}
	return newFile(f, true)
}

func newFile(f *os.File, writable bool) (*File, error) {
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mmapfile: stat")
	}
	mf := &File{f: f, size: info.Size(), writable: writable}
	if mf.size > 0 {
		if err := mf.mapWindow(0); err != nil {
			f.Close()
			return nil, err
		}
	}
	return mf, nil
}

func (mf *File) mapWindow(base int64) error {
	if mf.region != nil {
		if err := mf.unmapCurrent(); err != nil {
			return err
		}
	}
	length := mf.size - base
	if length > chunkSize {
		length = chunkSize
	}
	if length <= 0 {
		mf.region = nil
		mf.base = base
		return nil
	}
	prot := mmap.RDONLY
	if mf.writable {
		prot = mmap.RDWR
	}
	region, err := mmap.MapRegion(mf.f, int(length), prot, 0, base)
	if err != nil {
		return errors.Wrapf(err, "mmapfile: map region at %d (%d bytes)", base, length)
	}
	mf.region = region
	mf.base = base
	return nil
}

func (mf *File) unmapCurrent() error {
	if mf.region == nil {
		return nil
	}
	err := mf.region.Unmap()
	mf.region = nil
	if err != nil {
		return errors.Wrap(err, "mmapfile: unmap")
	}
	return nil
}

// windowFor ensures the mapped window covers offset, remapping if it
// does not, and returns offset's position within that window.
func (mf *File) windowFor(offset int64) (int, error) {
	if offset < mf.base || offset >= mf.base+chunkSize {
		newBase := (offset / chunkSize) * chunkSize
		if err := mf.mapWindow(newBase); err != nil {
			return 0, err
		}
	}
	return int(offset - mf.base), nil
}

// ReadAt reads len(p) bytes starting at off, remapping windows as
// needed for files larger than one chunk.
func (mf *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > mf.size {
		return 0, errors.Errorf("mmapfile: offset %d out of range (size %d)", off, mf.size)
	}
	n := 0
	for n < len(p) {
		cur := off + int64(n)
		if cur >= mf.size {
			if n == 0 {
				return 0, io.EOF
			}
			break
		}
		winOff, err := mf.windowFor(cur)
		if err != nil {
			return n, err
		}
		avail := len(mf.region) - winOff
		want := len(p) - n
		if want > avail {
			want = avail
		}
		copy(p[n:n+want], mf.region[winOff:winOff+want])
		n += want
	}
	return n, nil
}

// WriteAt writes p at off. The backing file must already be sized to
// cover off+len(p) (via Create's Truncate).
func (mf *File) WriteAt(p []byte, off int64) (int, error) {
	if !mf.writable {
		return 0, errors.New("mmapfile: file not opened for writing")
	}
	if off < 0 || off+int64(len(p)) > mf.size {
		return 0, errors.Errorf("mmapfile: write [%d,%d) out of range (size %d)", off, off+int64(len(p)), mf.size)
	}
	n := 0
	for n < len(p) {
		cur := off + int64(n)
		winOff, err := mf.windowFor(cur)
		if err != nil {
			return n, err
		}
		avail := len(mf.region) - winOff
		want := len(p) - n
		if want > avail {
			want = avail
		}
		copy(mf.region[winOff:winOff+want], p[n:n+want])
		n += want
	}
	return n, nil
}

// Force flushes the currently mapped window to disk.
func (mf *File) Force() error {
	if mf.region == nil {
		return nil
	}
	if err := mf.region.Flush(); err != nil {
		return errors.Wrap(err, "mmapfile: flush")
	}
	return nil
}

// Size returns the file's total size.
func (mf *File) Size() int64 { return mf.size }

// Close forces the current window to disk, unmaps it, and closes the
// underlying file. Safe to call more than once, and safe from any exit
// path: a caller need not call Force separately first.
func (mf *File) Close() error {
	if mf.closed {
		return nil
	}
	mf.closed = true
	forceErr := mf.Force()
	unmapErr := mf.unmapCurrent()
	closeErr := mf.f.Close()
	if forceErr != nil {
		return forceErr
	}
	if unmapErr != nil {
		return unmapErr
	}
	return errors.Wrap(closeErr, "mmapfile: close")
}
