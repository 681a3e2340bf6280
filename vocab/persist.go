package vocab

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// vocabularyJSON is the on-disk format: the merge table as (left,right) id pairs
// in learned order. Learned ids are implicit (256, 257, ...) and the base byte
// alphabet is fixed, so neither is stored.
type vocabularyJSON struct {
	Merges [][2]Token `json:"merges"`
}

// Save writes the vocabulary to path as JSON. The write goes to a temporary
// file that is atomically renamed into place, under a path+".lock" file so
// concurrent savers from other processes don't interleave.
func (v *Vocabulary) Save(path string) error {
	doc := vocabularyJSON{Merges: make([][2]Token, len(v.merges))}
	for k, rule := range v.merges {
		doc.Merges[k] = [2]Token{rule.Left, rule.Right}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "marshaling vocabulary for %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %q", path)
	}

	lockPath := path + ".lock"
	var mainErr error
	errLock := withFileLock(lockPath, func() {
		tmpPath := path + ".tmp"
		if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
			mainErr = errors.Wrapf(err, "writing temporary vocabulary file %q", tmpPath)
			return
		}
		if err := os.Rename(tmpPath, path); err != nil {
			if rmErr := os.Remove(tmpPath); rmErr != nil {
				klog.Warningf("Failed removing temporary vocabulary file %q: %v", tmpPath, rmErr)
			}
			mainErr = errors.Wrapf(err, "moving %q to %q", tmpPath, path)
			return
		}
		if rmErr := os.Remove(lockPath); rmErr != nil {
			klog.Warningf("Failed removing lock file %q: %v", lockPath, rmErr)
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.WithMessagef(errLock, "while locking %q to save vocabulary", lockPath)
	}
	return nil
}

// Load reads a vocabulary saved by Save and rebuilds the derived tables.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading vocabulary %q", path)
	}
	var doc vocabularyJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing vocabulary %q", path)
	}
	pairs := make([]Pair, len(doc.Merges))
	for k, m := range doc.Merges {
		pairs[k] = Pair{Left: m[0], Right: m[1]}
	}
	v, err := FromPairs(pairs)
	if err != nil {
		return nil, errors.WithMessagef(err, "vocabulary %q is inconsistent", path)
	}
	return v, nil
}

// withFileLock locks lockPath (creating it if needed), runs fn, and unlocks.
// If the lock is held elsewhere it polls with a 50 to 150ms period until it
// acquires the lock.
func withFileLock(lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)
	for {
		locked, lockErr := fileLock.TryLock()
		if lockErr != nil {
			return errors.Wrapf(lockErr, "while trying to lock %q", lockPath)
		}
		if locked {
			break
		}
		time.Sleep(time.Millisecond * time.Duration(50+rand.Intn(100)))
	}
	defer func() {
		if unlockErr := fileLock.Unlock(); unlockErr != nil && err == nil {
			err = errors.Wrapf(unlockErr, "unlocking %q", lockPath)
		}
	}()
	fn()
	return
}
