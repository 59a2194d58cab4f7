// Package runlog appends per-asset localization outcomes to a JSONL file for
// later analysis.
package runlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Outcome is the review disposition of one asset.
type Outcome string

const (
	OutcomePass      Outcome = "pass"
	OutcomeFail      Outcome = "fail"
	OutcomeEscalated Outcome = "escalated"
	OutcomeNoLoc     Outcome = "noloc"
)

// Record is one JSONL line.
type Record struct {
	Timestamp        time.Time `json:"timestamp"`
	AssetID          string    `json:"asset_id"`
	SourceLanguage   string    `json:"source_language"`
	TargetLanguage   string    `json:"target_language"`
	TotalStrings     int       `json:"total_strings"`
	ReviewOutcome    Outcome   `json:"review_outcome"`
	EscalationReason string    `json:"escalation_reason,omitempty"`
	DurationMS       int64     `json:"duration_ms,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

// Logger appends records to a single file. The zero value is a no-op logger.
type Logger struct {
	path string
}

// New returns a logger writing to path; empty path disables logging.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Append writes one record. Timestamps are stamped in UTC at write time if
// unset.
func (l *Logger) Append(rec Record) error {
	if l == nil || l.path == "" {
		return nil
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return fmt.Errorf("create run log dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // G304: caller-chosen log path
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	return nil
}

// ReadAll parses every record in the file, newest last.
func ReadAll(path string) ([]Record, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: caller-chosen log path
	if err != nil {
		return nil, err
	}
	var out []Record
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("parse run log: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
