// Package backup wraps a dataset snapshot in a versioned envelope and
// restores it.
//
// An envelope looks like
//
//	{
//	  "version": "1.0",
//	  "timestamp": "2024-03-01T12:00:00.000Z",
//	  "data": { "students": [...], "teachers": [...], ... }
//	}
//
// Restoring is all or nothing: a payload that fails validation leaves the
// store untouched, and a valid one replaces the whole dataset without a
// merge or an integrity check.
package backup

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/gradebook/internal/model"
)

// Version is written into every envelope. Restore requires a version but
// does not insist on this one.
const Version = "1.0"

//go:embed schema.cue
var schemaSource string

// requiredCollections must be present and non-null in the envelope data.
var requiredCollections = []string{"students", "teachers", "classSections", "subjects"}

// Envelope is the transport form of a snapshot.
type Envelope struct {
	Version   string         `json:"version"`
	Timestamp string         `json:"timestamp"`
	Data      model.Snapshot `json:"data"`
}

// Codec encodes and decodes backup envelopes. A Codec is not safe for
// concurrent use.
type Codec struct {
	clock  model.Clock
	cue    *cue.Context
	schema cue.Value
}

// NewCodec creates a codec that stamps envelopes using clock.
// A nil clock uses the system time.
func NewCodec(clock model.Clock) *Codec {
	if clock == nil {
		clock = model.SystemClock{}
	}
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		panic(fmt.Sprintf("backup: invalid embedded schema: %v", err))
	}
	return &Codec{clock: clock, cue: ctx, schema: schema}
}

// Encode wraps snap in an envelope and serializes it as two-space indented
// JSON.
func (c *Codec) Encode(snap model.Snapshot) ([]byte, error) {
	env := Envelope{
		Version:   Version,
		Timestamp: model.Timestamp(c.clock.Now()),
		Data:      snap.Clone(),
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return append(out, '\n'), nil
}

// Decode validates an envelope and returns it with its snapshot normalized.
// The version is reported as written; any non-empty string is accepted.
// Every failure is a MALFORMED_BACKUP error.
func (c *Codec) Decode(b []byte) (Envelope, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil || top == nil {
		return Envelope{}, model.NewMalformedBackupError("payload is not a JSON object", err)
	}

	var env Envelope
	if raw, ok := top["version"]; !ok || isNull(raw) {
		return Envelope{}, model.NewMalformedBackupError("missing version", nil)
	} else if err := json.Unmarshal(raw, &env.Version); err != nil || env.Version == "" {
		return Envelope{}, model.NewMalformedBackupError("version must be a non-empty string", err)
	}

	raw, ok := top["data"]
	if !ok || isNull(raw) {
		return Envelope{}, model.NewMalformedBackupError("missing data", nil)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return Envelope{}, model.NewMalformedBackupError("data must be an object", err)
	}
	if len(data) == 0 {
		return Envelope{}, model.NewMalformedBackupError("data is empty", nil)
	}
	for _, key := range requiredCollections {
		if v, ok := data[key]; !ok || isNull(v) {
			return Envelope{}, model.NewMalformedBackupError(fmt.Sprintf("data is missing %s", key), nil)
		}
	}

	if err := c.checkShape(b); err != nil {
		return Envelope{}, model.NewMalformedBackupError("backup does not match the expected shape", err)
	}

	// the schema has already pinned timestamp to a string when present
	if ts, ok := top["timestamp"]; ok {
		_ = json.Unmarshal(ts, &env.Timestamp)
	}
	if err := json.Unmarshal(raw, &env.Data); err != nil {
		return Envelope{}, model.NewMalformedBackupError("decode data", err)
	}
	env.Data.Normalize()
	return env, nil
}

// checkShape extracts the payload as CUE and unifies it with the embedded
// schema.
func (c *Codec) checkShape(b []byte) error {
	expr, err := cuejson.Extract("backup.json", b)
	if err != nil {
		return err
	}
	v := c.cue.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return err
	}
	return c.schema.Unify(v).Validate(cue.Concrete(true))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Source provides the dataset to export.
type Source interface {
	Snapshot() model.Snapshot
}

// Target accepts a restored dataset.
type Target interface {
	Replace(ctx context.Context, snap model.Snapshot) error
}

// Export writes an envelope of src's current dataset to w.
func (c *Codec) Export(w io.Writer, src Source) error {
	body, err := c.Encode(src.Snapshot())
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Import reads the whole payload from r, validates it and replaces dst's
// dataset with it. When decoding fails dst is not touched.
func (c *Codec) Import(ctx context.Context, r io.Reader, dst Target) (Envelope, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Envelope{}, fmt.Errorf("read backup: %w", err)
	}
	env, err := c.Decode(body)
	if err != nil {
		return Envelope{}, err
	}
	return env, dst.Replace(ctx, env.Data)
}

// Filename returns the conventional file name for a backup taken at t.
func Filename(t time.Time) string {
	return "backup_gradebook_" + t.UTC().Format(model.DateLayout) + ".json"
}
