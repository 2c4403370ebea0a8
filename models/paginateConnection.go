package models

import (
	"fmt"
	"time"

	"github.com/parishdesk/parish_backend/utils"
	"gorm.io/gorm"
)

// TimeCursor is a row paged newest first by a timestamp column, ties broken by id.
type TimeCursor interface {
	GetCursorTime() time.Time
	GetId() int
}

type Edge[N TimeCursor] struct {
	Node   *N     `json:"node"`
	Cursor string `json:"cursor"`
}

type Connection[N TimeCursor] struct {
	Edges    []Edge[N] `json:"edges"`
	PageInfo *PageInfo `json:"pageInfo"`
}

// fetchPageNewestFirst reads one page after the given cursor.
func fetchPageNewestFirst[T TimeCursor](dbCtx *gorm.DB,
	limit *int,
	after *string,
	cursorColumn string,
) (*Connection[T], error) {
	size := normalizePageSize(limit)
	nodes := make([]*T, 0)

	dbCtx = dbCtx.Order(cursorColumn + " DESC, id DESC")

	cursorAt, cursorId := DecodeCompositeCursor(after)
	if cursorId > 0 {
		dbCtx = dbCtx.Where(
			// [1] = column
			fmt.Sprintf("%[1]s < ? OR (%[1]s = ? AND id < ?)", cursorColumn),
			cursorAt, cursorAt, cursorId)
	}

	if err := dbCtx.Limit(size + 1).Find(&nodes).Error; err != nil {
		return nil, err
	}

	count := 0
	hasNextPage := false
	edges := make([]Edge[T], 0, len(nodes))
	for _, node := range nodes {
		if count == size {
			hasNextPage = true
		}
		if count < size {
			edges = append(edges, Edge[T]{
				Node:   node,
				Cursor: EncodeCompositeCursor((*node).GetCursorTime(), (*node).GetId()),
			})
			count++
		}
	}

	pageInfo := PageInfo{
		StartCursor: "",
		EndCursor:   "",
		HasNextPage: utils.NewFalse(),
	}
	if count > 0 {
		pageInfo = PageInfo{
			StartCursor: edges[0].Cursor,
			EndCursor:   edges[count-1].Cursor,
			HasNextPage: &hasNextPage,
		}
	}

	return &Connection[T]{Edges: edges, PageInfo: &pageInfo}, nil
}
