package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"dtek-outage-monitor/internal/models"
)

type statDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	SubType   string `json:"sub_type"`
	Type      string `json:"type"`
}

type respDTO struct {
	UpdateTimestamp string          `json:"updateTimestamp"`
	Data            json.RawMessage `json:"data"`
}

// ParseResponse turns a getHomeNum ajax response into a snapshot for house.
// A response without data is an error, never "no outage": treating it as
// power restored would delete a live notification on a provider glitch.
func ParseResponse(raw []byte, house string, fetchedAt time.Time) (models.StatusSnapshot, error) {
	var parsed respDTO
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return models.StatusSnapshot{}, fmt.Errorf("could not parse response: %w", err)
	}

	data := bytes.TrimSpace(parsed.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return models.StatusSnapshot{}, models.ErrEmptyResponse
	}

	// Entries are decoded lazily: only the configured house has to be
	// well-formed. PHP encodes an empty map as [].
	houses := map[string]json.RawMessage{}
	if !bytes.Equal(data, []byte("[]")) {
		if err := json.Unmarshal(data, &houses); err != nil {
			return models.StatusSnapshot{}, fmt.Errorf("could not parse response data: %w", err)
		}
	}

	var stat statDTO
	if entry := bytes.TrimSpace(houses[house]); len(entry) > 0 && !isEmptyJSON(entry) {
		if err := json.Unmarshal(entry, &stat); err != nil {
			return models.StatusSnapshot{}, fmt.Errorf("could not parse data for house %s: %w", house, err)
		}
	}

	return models.NewStatusSnapshot(
		stat.SubType,
		stat.StartDate,
		stat.EndDate,
		stat.Type,
		parsed.UpdateTimestamp,
		fetchedAt,
	), nil
}

func isEmptyJSON(v []byte) bool {
	return bytes.Equal(v, []byte("null")) || bytes.Equal(v, []byte("[]"))
}
