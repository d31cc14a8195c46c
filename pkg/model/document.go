package model

// Document is one record in a collection: a JSON object with an open set of
// fields. The "id" field is reserved for the document identifier and is always
// a string once a document has been stored.
type Document map[string]interface{}

// GetID returns the document's identifier, or "" if unset.
func (doc Document) GetID() string {
	if id, ok := doc["id"].(string); ok {
		return id
	}
	return ""
}

// SetID sets the document's identifier.
func (doc Document) SetID(id string) {
	doc["id"] = id
}

// GetString returns the named field as a string, or "" if absent or not a
// string. Collections are schema-free, so field access is always defensive.
func (doc Document) GetString(key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

// Clone returns a shallow copy of the document. Mutating the copy's top-level
// keys never affects the original.
func (doc Document) Clone() Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// Merge overlays the partial document onto a copy of doc: new keys are added,
// existing keys overwritten. The receiver's "id" always wins, even when the
// partial carries one.
func (doc Document) Merge(partial Document) Document {
	out := doc.Clone()
	for k, v := range partial {
		out[k] = v
	}
	if id := doc.GetID(); id != "" {
		out.SetID(id)
	}
	return out
}
