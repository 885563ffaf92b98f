package history

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/verte-zerg/afkstats/internal/model"
)

// CurrentVersion is the archive layout written by Encode.
//
// Version 0 is a bare JSON array of sessions. Decode still accepts it and the
// next save rewrites it in the current layout.
const CurrentVersion = 1

// ErrMalformed reports a stored archive that cannot be decoded.
var ErrMalformed = errors.New("malformed session history")

var codecAPI = sonic.ConfigStd

type envelope struct {
	Version  int             `json:"version"`
	Sessions []sessionRecord `json:"sessions"`
}

type sessionRecord struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	StartTime        int64   `json:"startTime"`
	EndTime          int64   `json:"endTime"`
	ClickCount       int     `json:"clickCount"`
	ConsistencyScore int     `json:"consistencyScore"`
	AvgInterval      float64 `json:"avgInterval"`
}

// Encode serializes the archive in the current layout.
func Encode(sessions []model.Session) (string, error) {
	env := envelope{
		Version:  CurrentVersion,
		Sessions: make([]sessionRecord, 0, len(sessions)),
	}
	for _, s := range sessions {
		env.Sessions = append(env.Sessions, toRecord(s))
	}
	data, err := codecAPI.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored archive. An empty blob decodes to an empty archive.
// Errors wrap ErrMalformed.
func Decode(blob string) ([]model.Session, error) {
	data := bytes.TrimSpace([]byte(blob))
	if len(data) == 0 {
		return []model.Session{}, nil
	}

	var records []sessionRecord
	switch data[0] {
	case '[':
		if err := codecAPI.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: legacy layout: %v", ErrMalformed, err)
		}
	case '{':
		var env envelope
		if err := codecAPI.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if env.Version < 1 || env.Version > CurrentVersion {
			return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, env.Version)
		}
		records = env.Sessions
	default:
		return nil, fmt.Errorf("%w: unexpected leading %q", ErrMalformed, data[0])
	}

	sessions := make([]model.Session, 0, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: session %d has no id", ErrMalformed, i)
		}
		sessions = append(sessions, fromRecord(rec))
	}
	return sessions, nil
}

func toRecord(s model.Session) sessionRecord {
	return sessionRecord{
		ID:               s.ID,
		Name:             s.Name,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		ClickCount:       s.ClickCount,
		ConsistencyScore: s.ConsistencyScore,
		AvgInterval:      s.AvgInterval,
	}
}

func fromRecord(r sessionRecord) model.Session {
	return model.Session{
		ID:               r.ID,
		Name:             r.Name,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		ClickCount:       r.ClickCount,
		ConsistencyScore: r.ConsistencyScore,
		AvgInterval:      r.AvgInterval,
	}
}
