package corpus

import (
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

// parquetDoc matches the row shape of HuggingFace-style text dataset files.
type parquetDoc struct {
	Text string `parquet:"text"`
}

// AddParquetFile reads the "text" column of a parquet dataset file and adds
// one document per row.
func (c *Corpus) AddParquetFile(path string) error {
	rows, err := parquet.ReadFile[parquetDoc](path)
	if err != nil {
		return errors.Wrapf(err, "reading parquet corpus %q", path)
	}
	for _, row := range rows {
		c.AddString(row.Text)
	}
	return nil
}
