package convert

import (
	"errors"
	"os"

	rpdf "rsc.io/pdf"
)

var errMalformed = errors.New("malformed pdf")

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	// rsc.io/pdf panics on some malformed trailers.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, errMalformed
		}
	}()

	doc, err := rpdf.NewReader(f, info.Size())
	if err != nil {
		return 0, err
	}

	return doc.NumPage(), nil
}
