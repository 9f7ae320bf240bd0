package queue

import (
	"encoding/json"
	"fmt"

	"tickerbot/internal/models"
)

// maxEntriesPerMessage caps how many user notifications ride in a single
// transport message.
const maxEntriesPerMessage = 10

// EncodeBatch serializes a group of user notifications into one message
// payload.
func EncodeBatch(entries []models.UserNotification) ([]byte, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification batch: %w", err)
	}
	return data, nil
}

// DecodeBatch deserializes a message payload back into user notifications.
func DecodeBatch(data []byte) ([]models.UserNotification, error) {
	var entries []models.UserNotification
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode notification batch: %w", err)
	}
	return entries, nil
}

// splitEntries slices entries into groups of at most maxEntriesPerMessage.
func splitEntries(entries []models.UserNotification) [][]models.UserNotification {
	if len(entries) == 0 {
		return nil
	}
	var groups [][]models.UserNotification
	for start := 0; start < len(entries); start += maxEntriesPerMessage {
		end := start + maxEntriesPerMessage
		if end > len(entries) {
			end = len(entries)
		}
		groups = append(groups, entries[start:end])
	}
	return groups
}
