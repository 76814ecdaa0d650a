package driver

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/janus-sync/janus/archive"
	"github.com/janus-sync/janus/mmapfile"
	"github.com/janus-sync/janus/plan"
	"github.com/janus-sync/janus/protocol"
	"github.com/janus-sync/janus/transport"
	"github.com/janus-sync/janus/tree"
)

// uploadBlockSize is the chunk size used for both UploadFile and
// UploadArchive DataBlock streams.
const uploadBlockSize = 1 << 20 // 1 MiB

// uploader walks the committed plan breadth-first, routing each
// UPLOAD file node to the small-file archive holder or the
// large-file path, and tracks in-flight nonces/seq ids for draining.
type uploader struct {
	conn *transport.Conn
	opts Options
	res  *Result

	holder         *archive.Holder
	seqCounter     uint64
	outstandingArc map[uint64]bool
	pendingFileAck int

	// pack runs one frozen holder's ToBytes+wire-send in the
	// background at a time. Every call site that is about to write to
	// the connection waits on it first, so the connection still sees
	// one writer at a time.
	pack errgroup.Group
}

func (u *uploader) run(nodes []*plan.Node) error {
	u.holder = archive.NewHolder()
	u.outstandingArc = make(map[uint64]bool)

	var queue []*plan.Node
	queue = append(queue, nodes...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if n.Action == plan.Upload && n.FileType == tree.File {
			if err := u.uploadOne(n); err != nil {
				return err
			}
		}
		queue = append(queue, n.Children...)
	}

	return u.flushHolder()
}

// isSmall reports whether a file of the given size takes the archive
// path rather than a dedicated UploadFile stream. The threshold is
// inclusive: a file of exactly the cutoff size is still packed.
func isSmall(size int64) bool {
	return size <= archive.SmallFileThreshold
}

func (u *uploader) uploadOne(n *plan.Node) error {
	abs := filepath.Join(u.opts.LocalPath, filepath.FromSlash(n.Path))

	if isSmall(n.Size) {
		data, err := os.ReadFile(abs)
		if err != nil {
			return errors.Wrapf(err, "driver: read %q", abs)
		}
		u.holder.Add(archive.Entry{Path: n.Path, Perm: n.Perm, Data: data})
		u.res.BytesTransferred += n.Size
		u.res.FilesTransferred++
		if u.holder.IsNearlyFull() {
			return u.flushHolder()
		}
		return nil
	}

	nonce := nextNonce()
	if err := u.pack.Wait(); err != nil {
		return err
	}
	if err := u.uploadLargeFile(abs, n, nonce); err != nil {
		return err
	}
	u.res.BytesTransferred += n.Size
	u.res.FilesTransferred++
	u.pendingFileAck++
	if u.pendingFileAck > u.opts.AckDrainThreshold {
		if _, err := u.drainFileAcks(); err != nil {
			return err
		}
		u.pendingFileAck = 0
	}
	return nil
}

// nextNonce derives a per-file u64 nonce from a fresh random UUID;
// its leading 8 bytes carry ample entropy for a token that only has
// to defeat ack misordering.
func nextNonce() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}

func (u *uploader) uploadLargeFile(abs string, n *plan.Node, nonce uint64) error {
	mf, err := mmapfile.Open(abs)
	if err != nil {
		return errors.Wrapf(err, "driver: open %q", abs)
	}
	defer mf.Close()

	if err := protocol.WriteMessage(u.conn, &protocol.UploadFile{
		Nonce: nonce,
		Perm:  n.Perm,
		Size:  uint64(n.Size),
		Path:  n.Path,
	}); err != nil {
		return err
	}

	buf := make([]byte, uploadBlockSize)
	var offset int64
	for offset < n.Size {
		want := int64(len(buf))
		if n.Size-offset < want {
			want = n.Size - offset
		}
		nRead, err := mf.ReadAt(buf[:want], offset)
		if err != nil && err != io.EOF {
			return errors.Wrapf(err, "driver: read %q", abs)
		}
		if nRead == 0 {
			break
		}
		if err := protocol.WriteMessage(u.conn, &protocol.DataBlock{Data: buf[:nRead]}); err != nil {
			return err
		}
		offset += int64(nRead)
	}
	return nil
}

// flushHolder freezes the current holder and hands its serialisation
// and wire transfer off to a background goroutine, returning
// immediately so the caller's walk loop can keep feeding the next
// holder. Only one background pack+send is ever in flight: flushHolder
// waits for the previous one to finish before starting the next, which
// keeps the connection's writes strictly serialised while still
// overlapping packing with the rest of the upload loop's work.
func (u *uploader) flushHolder() error {
	if err := u.pack.Wait(); err != nil {
		return err
	}
	if u.holder.Empty() {
		return nil
	}
	old := u.holder
	u.holder = archive.NewHolder()

	u.seqCounter++
	seqID := u.seqCounter
	u.outstandingArc[seqID] = true

	u.pack.Go(func() error {
		return u.sendArchive(seqID, old.ToBytes())
	})
	return nil
}

// sendArchive performs the UploadArchive header, its DataBlock stream,
// and the CommonResponse wait for one already-packed archive. Runs on
// the background goroutine flushHolder starts.
func (u *uploader) sendArchive(seqID uint64, data []byte) error {
	if err := protocol.WriteMessage(u.conn, &protocol.UploadArchive{
		SeqID:       seqID,
		ArchiveSize: uint64(len(data)),
	}); err != nil {
		return err
	}
	for len(data) > 0 {
		n := uploadBlockSize
		if n > len(data) {
			n = len(data)
		}
		if err := protocol.WriteMessage(u.conn, &protocol.DataBlock{Data: data[:n]}); err != nil {
			return err
		}
		data = data[n:]
	}

	msg, err := protocol.ReadMessage(u.conn)
	if err != nil {
		return err
	}
	defer protocol.Recycle(msg)
	resp, ok := msg.(*protocol.CommonResponse)
	if !ok || !resp.OK() {
		return errors.Errorf("driver: upload archive %d rejected", seqID)
	}
	return nil
}

// drainFileAcks issues one ConfirmFiles round and returns whatever the
// server had queued.
func (u *uploader) drainFileAcks() ([]protocol.FileAck, error) {
	if err := u.pack.Wait(); err != nil {
		return nil, err
	}
	if err := protocol.WriteMessage(u.conn, &protocol.ConfirmFiles{}); err != nil {
		return nil, err
	}
	msg, err := protocol.ReadMessage(u.conn)
	if err != nil {
		return nil, err
	}
	defer protocol.Recycle(msg)
	resp, ok := msg.(*protocol.CommonResponse)
	if !ok || !resp.OK() {
		return nil, errors.New("driver: confirm files failed")
	}
	return protocol.DecodeFileAcks(resp.Data)
}

// drainArchiveAcks issues one ConfirmArchives round, removing any
// reported seq ids from the outstanding set.
func (u *uploader) drainArchiveAcks(noBlock bool) ([]protocol.ArchiveAck, error) {
	if err := u.pack.Wait(); err != nil {
		return nil, err
	}
	if err := protocol.WriteMessage(u.conn, &protocol.ConfirmArchives{NoBlock: noBlock}); err != nil {
		return nil, err
	}
	msg, err := protocol.ReadMessage(u.conn)
	if err != nil {
		return nil, err
	}
	defer protocol.Recycle(msg)
	resp, ok := msg.(*protocol.CommonResponse)
	if !ok || !resp.OK() {
		return nil, errors.New("driver: confirm archives failed")
	}
	acks, err := protocol.DecodeArchiveAcks(resp.Data)
	if err != nil {
		return nil, err
	}
	for _, a := range acks {
		delete(u.outstandingArc, a.SeqID)
	}
	return acks, nil
}

// drainAll loops ConfirmArchives until every in-flight seq id has been
// reported, then issues a final ConfirmFiles to clear per-file acks.
func (u *uploader) drainAll() error {
	for len(u.outstandingArc) > 0 {
		if _, err := u.drainArchiveAcks(false); err != nil {
			return err
		}
	}
	if _, err := u.drainFileAcks(); err != nil {
		return err
	}
	return nil
}
