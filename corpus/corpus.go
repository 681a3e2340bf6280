// Package corpus holds training input as a collection of independent byte
// documents. Document boundaries are preserved all the way through training,
// so a token pair spanning two documents is never a merge candidate.
package corpus

// Corpus is an ordered collection of documents. The zero value is usable.
type Corpus struct {
	docs       [][]byte
	totalBytes int64
}

// New returns an empty corpus.
func New() *Corpus {
	return &Corpus{}
}

// Add appends doc as an independent document. Empty documents are dropped:
// they contribute no bytes and no countable pairs.
func (c *Corpus) Add(doc []byte) {
	if len(doc) == 0 {
		return
	}
	c.docs = append(c.docs, append([]byte(nil), doc...))
	c.totalBytes += int64(len(doc))
}

// AddString appends the UTF-8 bytes of doc as an independent document.
func (c *Corpus) AddString(doc string) {
	c.Add([]byte(doc))
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// TotalBytes returns the summed byte length of all documents.
func (c *Corpus) TotalBytes() int64 {
	return c.totalBytes
}

// Documents returns the documents in insertion order. The inner byte slices
// are shared and must not be modified.
func (c *Corpus) Documents() [][]byte {
	return append([][]byte(nil), c.docs...)
}
