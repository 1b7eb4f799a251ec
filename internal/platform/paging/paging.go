// Package paging は一覧APIで共通の limit/offset とレスポンス形を扱う。
package paging

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Page struct {
	Limit  int
	Offset int
}

// FromQuery: ?limit=&offset= を読む。不正値は既定値
func FromQuery(c *gin.Context) Page {
	p := Page{
		Limit:  atoiDef(c.Query("limit"), DefaultLimit),
		Offset: atoiDef(c.Query("offset"), 0),
	}
	return p.Normalize()
}

func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// NextOffset: 末尾に達したら 0
func (p Page) NextOffset(total int64) int {
	n := p.Offset + p.Limit
	if n >= int(total) {
		return 0
	}
	return n
}

type List[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	NextOffset int   `json:"next_offset"`
}

func NewList[T any](items []T, total int64, p Page) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Total: total, NextOffset: p.NextOffset(total)}
}

// OptionalInt64 は正のIDクエリを読む。不正なら ok=false
func OptionalInt64(c *gin.Context, key string) (v *int64, ok bool) {
	s := c.Query(key)
	if s == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return nil, false
	}
	return &n, true
}

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}
