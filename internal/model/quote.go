package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	QuoteStatusPending  = "pending"
	QuoteStatusApproved = "approved"
	QuoteStatusRejected = "rejected"
)

// LatestQuotesLimit caps the number of quotes returned by the latest feed
const LatestQuotesLimit = 6

// Quote represents a submitted saying in the quotes collection
type Quote struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Text          string             `bson:"text" json:"text"`
	Narrator      string             `bson:"narrator,omitempty" json:"narrator,omitempty"`
	Source        string             `bson:"source,omitempty" json:"source,omitempty"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	SubmittedBy   string             `bson:"submittedBy" json:"submittedBy"`
	SubmitterName string             `bson:"submitterName,omitempty" json:"submitterName,omitempty"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitzero"`
	// Extra carries document fields this service does not interpret.
	// They are stored and returned as they are.
	Extra bson.M `bson:",inline" json:"-"`
}

// quoteKeys are the document keys mapped onto Quote's typed fields
var quoteKeys = map[string]struct{}{
	"_id": {}, "text": {}, "narrator": {}, "source": {}, "category": {},
	"submittedBy": {}, "submitterName": {}, "status": {}, "createdAt": {},
}

// MarshalJSON flattens Extra next to the typed fields
func (q Quote) MarshalJSON() ([]byte, error) {
	type plain Quote
	typed, err := json.Marshal(plain(q))
	if err != nil || len(q.Extra) == 0 {
		return typed, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(typed, &fields); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(fields)+len(q.Extra))
	for k, v := range q.Extra {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// CreateQuoteRequest is used for submitting a new quote. Keys without a
// typed field are kept in Extra; status and createdAt are set by the server.
type CreateQuoteRequest struct {
	Text          string `json:"text" binding:"required"`
	Narrator      string `json:"narrator"`
	Source        string `json:"source"`
	Category      string `json:"category"`
	SubmittedBy   string `json:"submittedBy" binding:"omitempty,email"`
	SubmitterName string `json:"submitterName"`
	Extra         bson.M `json:"-"`
}

func (r *CreateQuoteRequest) UnmarshalJSON(data []byte) error {
	type plain CreateQuoteRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, quoteKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*r = CreateQuoteRequest(p)
	return nil
}

// UpdateQuoteRequest carries a partial edit; nil fields are left untouched.
// Keys without a typed field are applied as they are, except _id and
// createdAt which cannot be edited.
type UpdateQuoteRequest struct {
	Text     *string `json:"text,omitempty"`
	Narrator *string `json:"narrator,omitempty"`
	Source   *string `json:"source,omitempty"`
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty" binding:"omitempty,oneof=pending approved rejected"`
	Extra    bson.M  `json:"-"`
}

var updateKeys = map[string]struct{}{
	"text": {}, "narrator": {}, "source": {}, "category": {}, "status": {},
}

func (r *UpdateQuoteRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateQuoteRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, updateKeys)
	if err != nil {
		return err
	}
	for _, k := range []string{"_id", "createdAt"} {
		if _, ok := extra[k]; ok {
			return fmt.Errorf("field %q cannot be updated", k)
		}
	}
	p.Extra = extra
	*r = UpdateQuoteRequest(p)
	return nil
}

// Fields returns the document fields to $set, keyed by their bson names
func (r UpdateQuoteRequest) Fields() map[string]any {
	fields := make(map[string]any, len(r.Extra)+5)
	for k, v := range r.Extra {
		fields[k] = v
	}
	if r.Text != nil {
		fields["text"] = *r.Text
	}
	if r.Narrator != nil {
		fields["narrator"] = *r.Narrator
	}
	if r.Source != nil {
		fields["source"] = *r.Source
	}
	if r.Category != nil {
		fields["category"] = *r.Category
	}
	if r.Status != nil {
		fields["status"] = *r.Status
	}
	return fields
}

// extraFields returns the top-level keys of a JSON object that are not in
// known. Keys the store would treat as operators or paths are rejected.
func extraFields(data []byte, known map[string]struct{}) (bson.M, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var extra bson.M
	for k, v := range raw {
		if _, ok := known[k]; ok {
			continue
		}
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			return nil, fmt.Errorf("field name %q is not allowed", k)
		}
		if extra == nil {
			extra = bson.M{}
		}
		extra[k] = v
	}
	return extra, nil
}

type UpdateQuoteStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

// QuoteFilter narrows a quote listing
type QuoteFilter struct {
	SubmittedBy *string
	Status      *string
}

// UpdateResult reports how many records an update touched
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}
