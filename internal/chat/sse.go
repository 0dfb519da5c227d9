package chat

import (
	"bufio"
	"bytes"
	"io"
)

const dataField = "data:"

// eventReader splits a server-sent event stream into the data payloads of
// its events. Events are separated by a blank line; an event's data lines
// are joined with "\n". Bytes are buffered across reads, so an event split
// over several network chunks is still returned once and whole.
type eventReader struct {
	r *bufio.Reader
}

func newEventReader(r io.Reader) *eventReader {
	return &eventReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next event's payload, or io.EOF once the stream is
// exhausted. Events without data lines are skipped.
func (er *eventReader) Next() ([]byte, error) {
	var data [][]byte
	for {
		line, err := er.r.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimRight(line, "\r\n")
			if len(line) == 0 {
				if len(data) > 0 {
					return bytes.Join(data, []byte("\n")), nil
				}
			} else if bytes.HasPrefix(line, []byte(dataField)) {
				value := bytes.TrimPrefix(line, []byte(dataField))
				value = bytes.TrimPrefix(value, []byte(" "))
				data = append(data, append([]byte(nil), value...))
			}
		}

		if err != nil {
			if len(data) > 0 && err == io.EOF {
				return bytes.Join(data, []byte("\n")), nil
			}
			return nil, err
		}
	}
}
