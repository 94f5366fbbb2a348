package pbp

import (
	"io"
	"os"

	parquet "github.com/parquet-go/parquet-go"
)

var playSchema = parquet.SchemaOf(new(Play))

// WriteParquet writes plays as one snappy-compressed parquet file.
func WriteParquet(w io.Writer, plays []Play) error {
	pw := parquet.NewWriter(w, playSchema, parquet.Compression(&parquet.Snappy))
	for i := range plays {
		if err := pw.Write(&plays[i]); err != nil {
			_ = pw.Close()
			return err
		}
	}
	return pw.Close()
}

func WriteParquetFile(path string, plays []Play) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteParquet(f, plays); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ReadParquetFile(path string) ([]Play, error) {
	return parquet.ReadFile[Play](path)
}
