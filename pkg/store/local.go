package store

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deepakmuvva99/transmitter/pkg/fs"
	"github.com/deepakmuvva99/transmitter/pkg/models"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
)

const (
	audioDir = "audio"
	metaDir  = "meta"

	payloadExt = ".wav"
	metaExt    = ".json"
	tmpExt     = ".tmp"
)

// localStore keeps one payload file and one metadata file per segment, named
// by sequence id, in parallel directories under the buffer root. Quarantine
// mirrors the same layout under its own root.
type localStore struct {
	fsys           fs.Filesystem
	bufferRoot     string
	quarantineRoot string
	logger         log.Logger
}

func newLocalStore(config *Config, logger log.Logger) (Store, error) {
	if config.fsys == nil {
		return nil, errors.New("no filesystem")
	}
	if config.bufferRoot == "" || config.quarantineRoot == "" {
		return nil, errors.New("no buffer or quarantine root")
	}

	store := &localStore{
		fsys:           config.fsys,
		bufferRoot:     config.bufferRoot,
		quarantineRoot: config.quarantineRoot,
		logger:         logger,
	}

	for _, dir := range []string{
		filepath.Join(config.bufferRoot, audioDir),
		filepath.Join(config.bufferRoot, metaDir),
		filepath.Join(config.quarantineRoot, audioDir),
		filepath.Join(config.quarantineRoot, metaDir),
	} {
		if err := config.fsys.MkdirAll(dir); err != nil {
			return nil, errors.Wrapf(err, "creating path %s", dir)
		}
	}

	return store, nil
}

func (s *localStore) Create(segment models.Segment) error {
	if segment.SeqID == "" {
		return errors.New("no sequence id")
	}

	path := s.metaPath(s.bufferRoot, segment.SeqID)
	if s.fsys.Exists(path) {
		return errors.Errorf("segment %s already exists", segment.SeqID)
	}

	return s.writeSnapshot(path, segment)
}

func (s *localStore) Update(segment models.Segment) error {
	path := s.metaPath(s.bufferRoot, segment.SeqID)

	existing, err := s.readSnapshot(path)
	if err != nil {
		return errors.Wrapf(err, "reading segment %s", segment.SeqID)
	}

	if !existing.Status.CanTransition(segment.Status) {
		return errors.Errorf("illegal transition %s -> %s for segment %s",
			existing.Status, segment.Status, segment.SeqID,
		)
	}
	if segment.Retries < existing.Retries {
		return errors.Errorf("retry count may not decrease for segment %s", segment.SeqID)
	}

	return s.writeSnapshot(path, segment)
}

func (s *localStore) ListPending() ([]models.Segment, error) {
	segments, err := s.list(s.bufferRoot)
	if err != nil {
		return nil, err
	}

	pending := make([]models.Segment, 0, len(segments))
	for _, segment := range segments {
		if segment.Status == models.Created {
			pending = append(pending, segment)
		}
	}
	return pending, nil
}

func (s *localStore) Quarantined() ([]models.Segment, error) {
	return s.list(s.quarantineRoot)
}

func (s *localStore) WritePayload(seqID string, body []byte) (string, error) {
	if seqID == "" {
		return "", errors.New("no sequence id")
	}

	path := s.payloadPath(s.bufferRoot, seqID)

	file, err := s.fsys.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating payload %s", path)
	}
	if _, err = file.Write(body); err != nil {
		return "", errors.Wrapf(err, "writing payload %s", path)
	}
	if err = file.Sync(); err != nil {
		return "", errors.Wrapf(err, "syncing payload %s", path)
	}
	if err = file.Close(); err != nil {
		return "", errors.Wrapf(err, "closing payload %s", path)
	}

	return path, nil
}

func (s *localStore) ReadPayload(segment models.Segment) ([]byte, error) {
	path := segment.Payload
	if path == "" {
		path = s.payloadPath(s.bufferRoot, segment.SeqID)
	}

	file, err := s.fsys.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening payload %s", path)
	}
	defer file.Close()

	return ioutil.ReadAll(file)
}

func (s *localStore) Quarantine(segment models.Segment) error {
	var (
		oldPayload = segment.Payload
		newPayload = s.payloadPath(s.quarantineRoot, segment.SeqID)

		oldMeta = s.metaPath(s.bufferRoot, segment.SeqID)
		newMeta = s.metaPath(s.quarantineRoot, segment.SeqID)
	)
	if oldPayload == "" {
		oldPayload = s.payloadPath(s.bufferRoot, segment.SeqID)
	}

	segment.Status = models.Failed
	segment.Payload = newPayload

	// Snapshot the terminal status before anything moves, so a crash during
	// the move never resurrects the segment into the active queue.
	if err := s.writeSnapshot(oldMeta, segment); err != nil {
		return errors.Wrapf(err, "marking segment %s failed", segment.SeqID)
	}

	if err := s.fsys.Rename(oldPayload, newPayload); err != nil {
		if !fs.ErrNotFound(err) {
			return errors.Wrapf(err, "relocating payload for segment %s", segment.SeqID)
		}
		// Payload already moved by an interrupted earlier escalation.
		level.Warn(s.logger).Log("state", "quarantine", "seq_id", segment.SeqID, "reason", "payload already relocated")
	}

	if err := s.fsys.Rename(oldMeta, newMeta); err != nil {
		return errors.Wrapf(err, "relocating metadata for segment %s", segment.SeqID)
	}

	return nil
}

func (s *localStore) list(root string) ([]models.Segment, error) {
	var (
		warn     = level.Warn(s.logger)
		dir      = filepath.Join(root, metaDir)
		segments []models.Segment
	)

	err := s.fsys.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, metaExt) {
			// Orphaned .tmp files from interrupted writes land here. They
			// are ignored; the next snapshot write truncates them.
			return nil
		}

		segment, err := s.readSnapshot(path)
		if err != nil {
			if models.ErrCorrupt(err) {
				warn.Log("state", "list", "reason", "skipping malformed metadata", "path", path)
				return nil
			}
			return err
		}

		segments = append(segments, segment)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", dir)
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].SeqID < segments[j].SeqID
	})
	return segments, nil
}

func (s *localStore) readSnapshot(path string) (models.Segment, error) {
	file, err := s.fsys.Open(path)
	if err != nil {
		return models.Segment{}, err
	}
	defer file.Close()

	b, err := ioutil.ReadAll(file)
	if err != nil {
		return models.Segment{}, err
	}

	return models.DecodeSegment(b)
}

// writeSnapshot writes the full representation to a temporary sibling and
// publishes it with a single rename. A crash mid-write orphans the sibling
// and leaves the previous valid version intact.
func (s *localStore) writeSnapshot(path string, segment models.Segment) error {
	b, err := segment.Encode()
	if err != nil {
		return errors.Wrapf(err, "encoding segment %s", segment.SeqID)
	}

	tmp := path + tmpExt

	file, err := s.fsys.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "creating %s", tmp)
	}
	if _, err = file.Write(b); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	if err = file.Sync(); err != nil {
		return errors.Wrapf(err, "syncing %s", tmp)
	}
	if err = file.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp)
	}

	return s.fsys.Rename(tmp, path)
}

func (s *localStore) payloadPath(root, seqID string) string {
	return filepath.Join(root, audioDir, seqID+payloadExt)
}

func (s *localStore) metaPath(root, seqID string) string {
	return filepath.Join(root, metaDir, seqID+metaExt)
}
