package viewer

import (
	"fmt"
	"io"
	"os"
)

type NotFoundError struct {
	Source string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("GPX document %s not found", e.Source)
}

// ReadSource returns the whole document named by src: a file path, or
// "-" for stdin.
func ReadSource(src string, stdin io.Reader) ([]byte, error) {
	if src == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("error reading standard input: %v", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{src}
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %v", src, err)
	}
	return data, nil
}
