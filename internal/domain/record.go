package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// RecordKind identifies the kind of a session log record.
type RecordKind int

const (
	KindOther RecordKind = iota
	KindUser
	KindAssistant
)

func (k RecordKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAssistant:
		return "assistant"
	default:
		return "other"
	}
}

// Record is one parsed line of a Claude Code session log.
// Fields that a line does not carry are reported as absent by the accessors.
type Record struct {
	Kind    RecordKind
	RawType string

	timestamp *string
	gitBranch *string
	cwd       *string
	version   *string
	message   *AssistantMessage
}

// AssistantMessage is the nested message object of an assistant record.
type AssistantMessage struct {
	Model   string
	Usage   *Usage
	Content []ContentItem
}

// Usage holds token counters reported for one assistant turn.
type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheReadInputTokens     int64
	CacheCreationInputTokens int64
}

// ContentItem is one element of an assistant message content list.
type ContentItem struct {
	Type  string
	Name  string
	Input json.RawMessage
}

const (
	ContentToolUse  = "tool_use"
	ContentThinking = "thinking"
)

// ErrNotAnObject is returned for lines that are valid JSON but not an object.
var ErrNotAnObject = errors.New("record is not a JSON object")

// ParseRecord decodes a single JSONL line. Any JSON object is accepted.
// Each field is read on its own: a field of an unexpected type is reported
// as absent by its accessor and does not reject the record.
func ParseRecord(line []byte) (*Record, error) {
	if !gjson.ValidBytes(line) {
		return nil, fmt.Errorf("failed to parse record: invalid JSON")
	}
	root := gjson.ParseBytes(line)
	if !root.IsObject() {
		return nil, ErrNotAnObject
	}

	r := &Record{
		timestamp: stringField(root, "timestamp"),
		gitBranch: stringField(root, "gitBranch"),
		cwd:       stringField(root, "cwd"),
		version:   stringField(root, "version"),
	}
	if t := root.Get("type"); t.Type == gjson.String {
		r.RawType = t.Str
	}

	switch r.RawType {
	case "user":
		r.Kind = KindUser
	case "assistant":
		r.Kind = KindAssistant
		if m := root.Get("message"); m.IsObject() {
			r.message = parseMessage(m)
		}
	default:
		r.Kind = KindOther
	}

	return r, nil
}

func parseMessage(m gjson.Result) *AssistantMessage {
	msg := &AssistantMessage{}
	if model := m.Get("model"); model.Type == gjson.String {
		msg.Model = model.Str
	}
	if u := m.Get("usage"); u.IsObject() {
		msg.Usage = &Usage{
			InputTokens:              counter(u, "input_tokens"),
			OutputTokens:             counter(u, "output_tokens"),
			CacheReadInputTokens:     counter(u, "cache_read_input_tokens"),
			CacheCreationInputTokens: counter(u, "cache_creation_input_tokens"),
		}
	}
	if content := m.Get("content"); content.IsArray() {
		content.ForEach(func(_, item gjson.Result) bool {
			if !item.IsObject() {
				return true
			}
			ci := ContentItem{}
			if t := item.Get("type"); t.Type == gjson.String {
				ci.Type = t.Str
			}
			if n := item.Get("name"); n.Type == gjson.String {
				ci.Name = n.Str
			}
			if in := item.Get("input"); in.Exists() {
				ci.Input = json.RawMessage(in.Raw)
			}
			msg.Content = append(msg.Content, ci)
			return true
		})
	}
	return msg
}

func stringField(root gjson.Result, path string) *string {
	v := root.Get(path)
	if v.Type != gjson.String {
		return nil
	}
	s := v.Str
	return &s
}

// counter reads a token counter. Non-numeric values count as zero; fractions are truncated.
func counter(u gjson.Result, path string) int64 {
	v := u.Get(path)
	if v.Type != gjson.Number {
		return 0
	}
	return v.Int()
}

func optional(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func (r *Record) Timestamp() (string, bool) { return optional(r.timestamp) }
func (r *Record) GitBranch() (string, bool) { return optional(r.gitBranch) }
func (r *Record) Cwd() (string, bool)       { return optional(r.cwd) }
func (r *Record) Version() (string, bool)   { return optional(r.version) }

// Model returns the model of an assistant record.
func (r *Record) Model() (string, bool) {
	if r.message == nil || r.message.Model == "" {
		return "", false
	}
	return r.message.Model, true
}

// Usage returns the token usage of an assistant record, or nil.
func (r *Record) Usage() *Usage {
	if r.message == nil {
		return nil
	}
	return r.message.Usage
}

// Content returns the content items of an assistant record. String content
// and non-list content yield no items.
func (r *Record) Content() []ContentItem {
	if r.message == nil {
		return nil
	}
	return r.message.Content
}

// FilePath returns the file_path or notebook_path input of a tool_use item.
func (c ContentItem) FilePath() (string, bool) {
	for _, key := range []string{"file_path", "notebook_path"} {
		if v := gjson.GetBytes(c.Input, key); v.Type == gjson.String && v.Str != "" {
			return v.Str, true
		}
	}
	return "", false
}
