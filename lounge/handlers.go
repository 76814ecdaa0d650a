package lounge

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/janus-sync/janus/archive"
	"github.com/janus-sync/janus/internal/logging"
	"github.com/janus-sync/janus/internal/pathsafe"
	"github.com/janus-sync/janus/mmapfile"
	"github.com/janus-sync/janus/plan"
	"github.com/janus-sync/janus/protocol"
	"github.com/janus-sync/janus/tree"
)

// dispatch reads and handles messages in a tight loop until Bye, a
// protocol violation, or a transport error. One bad handler call ends
// the loop and the connection; the accept loop keeps running.
func (s *Session) dispatch() error {
	s.pool = archive.NewPool(s.ws.Path)

	ignoreM, err := tree.NewMatcher(s.ws.Ignore)
	if err != nil {
		return errors.Wrap(err, "lounge: compile ignore rules")
	}
	protectM, err := tree.NewMatcher(s.ws.Protect)
	if err != nil {
		return errors.Wrap(err, "lounge: compile protect rules")
	}

	for {
		msg, err := protocol.ReadMessage(s.conn)
		if err != nil {
			return err
		}

		switch m := msg.(type) {
		case *protocol.Bye:
			protocol.Recycle(msg)
			protocol.WriteMessage(s.conn, &protocol.Bye{})
			return nil

		case *protocol.GetSystemTimeMillis:
			protocol.Recycle(msg)
			err = s.handleGetSystemTime()

		case *protocol.FetchFileTree:
			protocol.Recycle(msg)
			err = s.handleFetchFileTree(ignoreM)

		case *protocol.CommitSyncPlan:
			err = s.handleCommitSyncPlan(m, protectM)
			protocol.Recycle(msg)

		case *protocol.UploadFile:
			err = s.handleUploadFile(m)
			protocol.Recycle(msg)

		case *protocol.UploadArchive:
			err = s.handleUploadArchive(m)
			protocol.Recycle(msg)

		case *protocol.ConfirmFiles:
			protocol.Recycle(msg)
			err = s.handleConfirmFiles()

		case *protocol.ConfirmArchives:
			err = s.handleConfirmArchives(m)
			protocol.Recycle(msg)

		default:
			gotType := msg.MsgType()
			protocol.Recycle(msg)
			err = errors.Errorf("lounge: unexpected message type %s in bound session", gotType)
		}

		if err != nil {
			return err
		}
	}
}

func (s *Session) handleGetSystemTime() error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(time.Now().UnixMilli()))
	return protocol.WriteMessage(s.conn, protocol.Success(b[:]))
}

func (s *Session) handleFetchFileTree(ignoreM *tree.Matcher) error {
	root, err := tree.Walk(s.ws.Path, ignoreM)
	if err != nil {
		return protocol.WriteMessage(s.conn, protocol.Failure(1, err.Error()))
	}
	return protocol.WriteMessage(s.conn, protocol.Success(tree.Encode(root)))
}

func (s *Session) handleCommitSyncPlan(m *protocol.CommitSyncPlan, protectM *tree.Matcher) error {
	for _, raw := range m.Subtrees {
		n, err := plan.Decode(s.ws.Path, raw)
		if err != nil {
			return protocol.WriteMessage(s.conn, protocol.Failure(1, err.Error()))
		}
		if err := s.applyPlanNode(n, protectM); err != nil {
			return protocol.WriteMessage(s.conn, protocol.Failure(1, err.Error()))
		}
	}
	return protocol.WriteMessage(s.conn, protocol.Success(nil))
}

// applyPlanNode performs the side effects CommitSyncPlan is
// responsible for: pre-creating directories for UPLOAD and deleting
// (respecting protect rules and the dangling policy) for
// DELETE_REMOTE. UPLOAD on a file is a no-op here; the bytes arrive
// later via UploadFile or UploadArchive.
func (s *Session) applyPlanNode(n *plan.Node, protectM *tree.Matcher) error {
	switch n.Action {
	case plan.DeleteRemote:
		if err := s.applyDelete(n, protectM); err != nil {
			return err
		}
		return nil // DELETE_REMOTE on a directory is recursive by itself; don't also walk children
	case plan.Upload:
		if n.FileType == tree.Directory {
			target, err := pathsafe.Resolve(s.ws.Path, n.Path)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "lounge: mkdir %q", target)
			}
		}
	}
	for _, c := range n.Children {
		if err := s.applyPlanNode(c, protectM); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) applyDelete(n *plan.Node, protectM *tree.Matcher) error {
	if protectM.Match(n.Path, n.FileType == tree.Directory) {
		logging.Infof(s.ws.Name, "protect rule keeps %q", n.Path)
		return nil
	}
	switch s.opts.Dangling {
	case DanglingKeep:
		logging.Infof(s.ws.Name, "dangling=keep: not deleting %q", n.Path)
		return nil
	case DanglingPanic:
		return errors.Errorf("lounge: dangling=panic: refusing to delete %q", n.Path)
	}

	target, err := pathsafe.Resolve(s.ws.Path, n.Path)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "lounge: delete %q", target)
	}
	return nil
}

// handleUploadFile receives one large file's DataBlock stream and
// writes it via mmap. A path-safety violation aborts the connection;
// any other filesystem failure is reported only as a non-zero ACK for
// this file, and the remaining declared bytes are still drained off
// the wire so the connection stays in sync.
func (s *Session) handleUploadFile(m *protocol.UploadFile) error {
	target, err := pathsafe.Resolve(s.ws.Path, m.Path)
	if err != nil {
		return errors.Wrap(err, "lounge: upload file path safety")
	}

	code, fatal := s.receiveFile(target, m)
	if fatal != nil {
		return fatal
	}
	s.mu.Lock()
	s.fileAcks = append(s.fileAcks, protocol.FileAck{Nonce: m.Nonce, Code: code})
	s.mu.Unlock()
	return nil
}

func (s *Session) receiveFile(target string, m *protocol.UploadFile) (code int32, fatal error) {
	tmp := target + ".janus-sync-tmp"
	perm := os.FileMode(m.Perm & 0o777)
	if perm == 0 {
		perm = 0o644
	}

	var mf *mmapfile.File
	var localErr error
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		localErr = errors.Wrapf(err, "mkdir parents for %q", target)
	} else if f, err := mmapfile.Create(tmp, int64(m.Size), perm); err != nil {
		localErr = errors.Wrapf(err, "create %q", tmp)
	} else {
		mf = f
	}

	var offset int64
	for uint64(offset) < m.Size {
		msg, err := protocol.ReadMessage(s.conn)
		if err != nil {
			if mf != nil {
				mf.Close()
				os.Remove(tmp)
			}
			return 1, err
		}
		block, ok := msg.(*protocol.DataBlock)
		if !ok {
			gotType := msg.MsgType()
			protocol.Recycle(msg)
			if mf != nil {
				mf.Close()
				os.Remove(tmp)
			}
			return 1, errors.Errorf("lounge: expected DataBlock, got %s", gotType)
		}
		if mf != nil && localErr == nil {
			if _, err := mf.WriteAt(block.Data, offset); err != nil {
				localErr = err
			}
		}
		offset += int64(len(block.Data))
		protocol.Recycle(msg)
	}

	if mf == nil {
		logging.Errorf(s.ws.Name, "upload %q: %v", m.Path, localErr)
		return 1, nil
	}
	if localErr == nil {
		localErr = mf.Force()
	}
	if closeErr := mf.Close(); localErr == nil {
		localErr = closeErr
	}
	if localErr == nil {
		localErr = renameOver(tmp, target)
	}
	if localErr != nil {
		os.Remove(tmp)
		logging.Errorf(s.ws.Name, "upload %q: %v", m.Path, localErr)
		return 1, nil
	}
	// Re-apply the wire permission bits post-move: the bits given at
	// create time are narrowed by the process umask.
	if err := mmapfile.ApplyPerm(target, m.Perm&0o777); err != nil {
		logging.Debugf(s.ws.Name, "apply permissions on %q: %v", m.Path, err)
	}
	return 0, nil
}

// handleUploadArchive reads exactly ArchiveSize bytes of DataBlocks
// and feeds them to the extractor pool, which writes entries in the
// background. The CommonResponse acknowledges receipt of the stream,
// not completion of extraction — completion is reported later via
// ConfirmArchives.
func (s *Session) handleUploadArchive(m *protocol.UploadArchive) error {
	stream := s.pool.Begin(m.SeqID, int64(m.ArchiveSize))

	var consumed uint64
	for consumed < m.ArchiveSize {
		msg, err := protocol.ReadMessage(s.conn)
		if err != nil {
			stream.Close()
			return err
		}
		block, ok := msg.(*protocol.DataBlock)
		if !ok {
			gotType := msg.MsgType()
			protocol.Recycle(msg)
			stream.Close()
			return errors.Errorf("lounge: expected DataBlock, got %s", gotType)
		}
		stream.Write(block.Data)
		consumed += uint64(len(block.Data))
		protocol.Recycle(msg)
	}
	stream.Close()
	return protocol.WriteMessage(s.conn, protocol.Success(nil))
}

func (s *Session) handleConfirmFiles() error {
	s.mu.Lock()
	acks := s.fileAcks
	s.fileAcks = nil
	s.mu.Unlock()
	return protocol.WriteMessage(s.conn, protocol.Success(protocol.EncodeFileAcks(acks)))
}

func (s *Session) handleConfirmArchives(m *protocol.ConfirmArchives) error {
	results := s.pool.CheckExtracted(!m.NoBlock)
	acks := make([]protocol.ArchiveAck, len(results))
	for i, r := range results {
		acks[i] = protocol.ArchiveAck{SeqID: r.SeqID, Status: r.Status}
	}
	return protocol.WriteMessage(s.conn, protocol.Success(protocol.EncodeArchiveAcks(acks)))
}
