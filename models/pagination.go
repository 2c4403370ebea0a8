package models

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

type PageInfo struct {
	StartCursor string `json:"startCursor"`
	EndCursor   string `json:"endCursor"`
	HasNextPage *bool  `json:"hasNextPage,omitempty"`
}

// DecodeCompositeCursor splits a "timestamp|id" cursor. A malformed cursor
// reads as the first page.
func DecodeCompositeCursor(cursor *string) (time.Time, int) {
	if cursor == nil || *cursor == "" {
		return time.Time{}, 0
	}

	decoded, err := base64.StdEncoding.DecodeString(*cursor)
	if err != nil {
		return time.Time{}, 0
	}

	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 {
		return time.Time{}, 0
	}

	at, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, 0
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, 0
	}

	return at, id
}

func EncodeCompositeCursor(at time.Time, id int) string {
	cursor := fmt.Sprintf("%s|%d", at.UTC().Format(time.RFC3339Nano), id)
	return base64.StdEncoding.EncodeToString([]byte(cursor))
}

func normalizePageSize(limit *int) int {
	if limit == nil || *limit <= 0 {
		return defaultPageSize
	}
	if *limit > maxPageSize {
		return maxPageSize
	}
	return *limit
}
