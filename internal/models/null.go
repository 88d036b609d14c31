package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// NullString scans like sql.NullString but serializes the way API
// clients expect: a plain JSON string, or null when absent.
type NullString struct {
	sql.NullString
}

func NewNullString(value string) NullString {
	return NullString{sql.NullString{String: value, Valid: value != ""}}
}

func (ns NullString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ns.String)
}

func (ns *NullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ns = NullString{}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	ns.NullString = sql.NullString{String: value, Valid: true}
	return nil
}

// NullTime is the time counterpart of NullString.
type NullTime struct {
	sql.NullTime
}

func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nt.Time)
}

func (nt *NullTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*nt = NullTime{}
		return nil
	}
	var value time.Time
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	nt.NullTime = sql.NullTime{Time: value, Valid: true}
	return nil
}
