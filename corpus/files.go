package corpus

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// AddFile reads the file at path and adds its contents as one document.
// The file is memory-mapped while its bytes are copied in, so large corpus
// files don't need a second in-flight buffer.
func (c *Corpus) AddFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening corpus file %q", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "stating corpus file %q", path)
	}
	if info.Size() == 0 {
		// Nothing to add; mmap of an empty file fails on most platforms.
		return nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return errors.Wrapf(err, "failed to mmap %q", path)
	}
	defer func() {
		_ = m.Unmap()
	}()

	c.Add(m)
	return nil
}
