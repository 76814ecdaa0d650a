package archive

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/janus-sync/janus/internal/logging"
	"github.com/janus-sync/janus/internal/pathsafe"
	"github.com/janus-sync/janus/mmapfile"
)

// StreamBacklog is the bounded backpressure depth of one archive's
// byte-block channel. When the extractor can't keep up with the
// network, the receive loop stalls here instead of buffering without
// bound.
const StreamBacklog = 192

// Result reports the outcome of one extracted archive, keyed by the
// seq_id the client assigned when it issued UploadArchive.
type Result struct {
	SeqID  uint64
	Status int32
}

// Stream is the write side of one in-flight archive extraction: the
// connection's receive loop calls Write for every DataBlock it reads
// off the wire for this seq_id, then Close once archive_size bytes
// have been fed.
type Stream struct {
	blocks chan []byte
}

// Write enqueues one received block, blocking if the extractor can't
// keep up with the network.
func (s *Stream) Write(block []byte) {
	s.blocks <- block
}

// Close signals that the full declared archive has been fed.
func (s *Stream) Close() {
	close(s.blocks)
}

// Pool is the per-session extractor pool: one Begin call per
// UploadArchive, running concurrently with the connection's receive
// loop, reporting completion through CheckExtracted.
type Pool struct {
	root string

	mu      sync.Mutex
	pending []Result
	cond    *sync.Cond
}

// NewPool returns an extractor pool rooted at workspaceRoot, the
// directory every entry path is resolved and safety-checked against.
func NewPool(workspaceRoot string) *Pool {
	p := &Pool{root: workspaceRoot}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Begin starts a background extraction task for seqID and returns the
// Stream to feed it with. archiveSize is informational only here; the
// caller is responsible for feeding exactly that many bytes' worth of
// blocks before calling Stream.Close.
func (p *Pool) Begin(seqID uint64, archiveSize int64) *Stream {
	s := &Stream{blocks: make(chan []byte, StreamBacklog)}
	go p.run(seqID, s)
	return s
}

func (p *Pool) run(seqID uint64, s *Stream) {
	var buf []byte
	status := int32(0)

	for block := range s.blocks {
		buf = append(buf, block...)
		for {
			entry, n, err := DecodeEntry(buf)
			if err == ErrTruncated {
				break
			}
			if err != nil {
				logging.Errorf("archive", "seq %d: decode entry: %v", seqID, err)
				status = 1
				buf = nil
				break
			}
			if extractErr := p.extractOne(entry); extractErr != nil {
				logging.Errorf("archive", "seq %d: extract %q: %v", seqID, entry.Path, extractErr)
				status = 1
			}
			buf = buf[n:]
		}
	}

	if len(buf) != 0 {
		logging.Errorf("archive", "seq %d: %d trailing bytes after last complete entry", seqID, len(buf))
		status = 1
	}

	p.mu.Lock()
	p.pending = append(p.pending, Result{SeqID: seqID, Status: status})
	p.cond.Signal()
	p.mu.Unlock()
}

// extractOne resolves entry.Path against the workspace root, refusing
// (and discarding the bytes of) anything that would escape it, then
// writes the payload via a temp-file-then-rename sequence.
func (p *Pool) extractOne(entry Entry) error {
	target, err := pathsafe.Resolve(p.root, entry.Path)
	if err != nil {
		logging.Errorf("archive", "rejecting path-escaping entry %q", entry.Path)
		return nil // bytes already consumed from buf by the caller; this is not fatal to the archive
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "mkdir parents for %q", target)
	}

	tmp := target + ".janus-sync-tmp"
	perm := os.FileMode(entry.Perm & 0o777)
	if perm == 0 {
		perm = 0o644
	}
	mf, err := mmapfile.Create(tmp, int64(len(entry.Data)), perm)
	if err != nil {
		return errors.Wrapf(err, "create %q", tmp)
	}
	if _, err := mf.WriteAt(entry.Data, 0); err != nil {
		mf.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "write %q", tmp)
	}
	if err := mf.Force(); err != nil {
		mf.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "force %q", tmp)
	}
	if err := mf.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "close %q", tmp)
	}

	if err := os.Rename(tmp, target); err != nil {
		// Fall back to non-atomic replace; clean up on failure.
		if rmErr := os.Remove(target); rmErr != nil && !os.IsNotExist(rmErr) {
			os.Remove(tmp)
			return errors.Wrapf(err, "rename %q over %q", tmp, target)
		}
		if err := os.Rename(tmp, target); err != nil {
			os.Remove(tmp)
			return errors.Wrapf(err, "replace %q", target)
		}
	}
	// Re-apply the wire permission bits post-move: the bits given at
	// create time are narrowed by the process umask.
	if err := mmapfile.ApplyPerm(target, entry.Perm&0o777); err != nil {
		logging.Debugf("archive", "apply permissions on %q: %v", entry.Path, err)
	}
	return nil
}

// CheckExtracted drains completed results. If blockUntilSome is true
// and nothing is ready yet, it waits for at least one completion
// before returning; otherwise it returns immediately with whatever is
// ready.
func (p *Pool) CheckExtracted(blockUntilSome bool) []Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	if blockUntilSome {
		for len(p.pending) == 0 {
			p.cond.Wait()
		}
	}
	out := p.pending
	p.pending = nil
	return out
}
