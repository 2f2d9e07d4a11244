package options

import (
	"encoding/json"
	"strings"
)

// Option is one selectable value of a reference field.
type Option struct {
	ID    string
	Label string
}

type optionJSON struct {
	WireID   string `json:"@id"`
	LegacyID string `json:"id"`
	Label    string `json:"label"`
}

// MarshalJSON writes the identifier under both "@id" and the legacy "id" key.
func (o Option) MarshalJSON() ([]byte, error) {
	return json.Marshal(optionJSON{WireID: o.ID, LegacyID: o.ID, Label: o.Label})
}

// UnmarshalJSON accepts either identifier key, preferring "@id".
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw optionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.ID = raw.WireID
	if o.ID == "" {
		o.ID = raw.LegacyID
	}
	o.Label = raw.Label
	return nil
}

// Contains reports whether value matches the identifier of one of options.
// The scan is linear; option lists are expected to hold tens of entries.
func Contains(options []Option, value string) bool {
	for _, option := range options {
		if option.ID == value {
			return true
		}
	}
	return false
}

// DirectInput reports whether a field holding value should fall back to
// free-text entry: the value is non-empty and none of the options carries it.
func DirectInput(options []Option, value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	return !Contains(options, value)
}

// DirectInputAny applies DirectInput to every element of an array value.
func DirectInputAny(options []Option, values []string) bool {
	for _, value := range values {
		if DirectInput(options, value) {
			return true
		}
	}
	return false
}

func cloneOptions(options []Option) []Option {
	if options == nil {
		return []Option{}
	}
	return append([]Option(nil), options...)
}
