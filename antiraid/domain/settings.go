package domain

import (
	"fmt"
	"sync"
)

// Record is the antiraid configuration of one community.
type Record struct {
	CommunityID string
	ChannelID   string
	Values      map[string]any
}

// NewRecord builds the default record for a community. The notification
// channel points at the community itself until an operator configures it.
func NewRecord(communityID string) Record {
	return Record{
		CommunityID: communityID,
		ChannelID:   communityID,
		Values:      map[string]any{},
	}
}

// Document is the persisted shape of a Record.
type Document struct {
	CommunityID string         `json:"communityId"`
	ChannelID   string         `json:"channelId"`
	Values      map[string]any `json:"values,omitempty"`
}

// Fields flattens the document into {communityId, channelId, <param>: value}.
func (d Document) Fields() map[string]any {
	out := make(map[string]any, len(d.Values)+2)
	for k, v := range d.Values {
		out[k] = v
	}
	out["communityId"] = d.CommunityID
	out[ParamChannelID] = d.ChannelID
	return out
}

// DocumentFromFields is the inverse of Fields. Unknown keys are dropped and
// values are normalized according to the type table.
func DocumentFromFields(fields map[string]any) (Document, error) {
	id, _ := fields["communityId"].(string)
	if id == "" {
		return Document{}, fmt.Errorf("document has no communityId")
	}
	doc := Document{CommunityID: id, Values: map[string]any{}}
	doc.ChannelID, _ = fields[ParamChannelID].(string)
	if doc.ChannelID == "" {
		doc.ChannelID = id
	}
	for name, raw := range fields {
		if name == ParamChannelID {
			continue
		}
		p, ok := LookupParameter(name)
		if !ok || raw == nil {
			continue
		}
		if v, ok := p.Kind.Normalize(raw); ok {
			doc.Values[name] = v
		}
	}
	return doc, nil
}

// Record converts a persisted document back into a Record.
func (d Document) Record() Record {
	r := NewRecord(d.CommunityID)
	if d.ChannelID != "" {
		r.ChannelID = d.ChannelID
	}
	for name, raw := range d.Values {
		p, ok := LookupParameter(name)
		if !ok || name == ParamChannelID {
			continue
		}
		if v, ok := p.Kind.Normalize(raw); ok {
			r.Values[name] = v
		}
	}
	return r
}

// Handle owns the Record of one community. All reads and writes of the
// record go through the handle.
type Handle struct {
	mu     sync.RWMutex
	record Record
}

func NewHandle(record Record) *Handle {
	if record.Values == nil {
		record.Values = map[string]any{}
	}
	return &Handle{record: record}
}

func (h *Handle) CommunityID() string {
	return h.record.CommunityID
}

// Get returns the stored value of a parameter, or nil when it was never set.
func (h *Handle) Get(name string) any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if name == ParamChannelID {
		return h.record.ChannelID
	}
	return h.record.Values[name]
}

// Int returns an int parameter or fallback when it is unset.
func (h *Handle) Int(name string, fallback int) int {
	if n, ok := h.Get(name).(int); ok {
		return n
	}
	return fallback
}

// Text returns a string parameter, decoded for display, or fallback when it
// is unset or empty.
func (h *Handle) Text(name string, fallback string) string {
	p, ok := LookupParameter(name)
	if !ok {
		return fallback
	}
	v := h.Get(name)
	if v == nil {
		return fallback
	}
	if s := p.Kind.Format(v); s != "" {
		return s
	}
	return fallback
}

// Set stores an already coerced value. The value must match the declared
// kind of the parameter.
func (h *Handle) Set(name string, value any) error {
	p, ok := LookupParameter(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	v, ok := p.Kind.Normalize(value)
	if !ok {
		return fmt.Errorf("value %v (%T) does not match kind %s of %s", value, value, p.Kind, name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if name == ParamChannelID {
		h.record.ChannelID = v.(string)
		return nil
	}
	h.record.Values[name] = v
	return nil
}

// Document snapshots the record into its persisted shape.
func (h *Handle) Document() Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	values := make(map[string]any, len(h.record.Values))
	for k, v := range h.record.Values {
		values[k] = v
	}
	return Document{
		CommunityID: h.record.CommunityID,
		ChannelID:   h.record.ChannelID,
		Values:      values,
	}
}
