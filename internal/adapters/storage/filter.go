package storage

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
)

// FilterThinking copies a session log from r to w, dropping blank lines and
// removing thinking items from assistant message content. Lines that are not
// valid JSON are written as they are; everything else in a line is left untouched.
func FilterThinking(r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if werr := writeFiltered(writer, line); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	return writer.Flush()
}

func writeFiltered(w *bufio.Writer, line []byte) error {
	line = bytes.TrimSuffix(line, []byte("\n"))
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}

	if gjson.ValidBytes(line) {
		line = stripThinking(line)
	}

	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// stripThinking removes thinking items from message.content of an assistant record.
// The line is returned unchanged when there is nothing to remove.
func stripThinking(line []byte) []byte {
	if gjson.GetBytes(line, "type").String() != "assistant" {
		return line
	}
	content := gjson.GetBytes(line, "message.content")
	if !content.IsArray() {
		return line
	}

	var kept [][]byte
	removed := false
	content.ForEach(func(_, item gjson.Result) bool {
		if item.Get("type").String() == domain.ContentThinking {
			removed = true
			return true
		}
		kept = append(kept, []byte(item.Raw))
		return true
	})
	if !removed {
		return line
	}

	raw := append([]byte{'['}, bytes.Join(kept, []byte{','})...)
	raw = append(raw, ']')

	out, err := sjson.SetRawBytes(line, "message.content", raw)
	if err != nil {
		return line
	}
	return out
}
