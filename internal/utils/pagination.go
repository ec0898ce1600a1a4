package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const defaultPageLimit = 25

var pageLimits = map[int]bool{10: true, 25: true, 50: true, 100: true}

// Page is a page request read from ?page= and ?limit=. Unknown limits fall
// back to 25.
type Page struct {
	Number int
	Limit  int
}

func PageFromQuery(c *fiber.Ctx) Page {
	number, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageLimit)))

	if number < 1 {
		number = 1
	}
	if !pageLimits[limit] {
		limit = defaultPageLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        int   `json:"from"`
	To          int   `json:"to"`
	HasMore     bool  `json:"has_more"`
}

// Meta describes where the page sits within total rows.
func (p Page) Meta(total int64) PageMeta {
	meta := PageMeta{
		CurrentPage: p.Number,
		PerPage:     p.Limit,
		Total:       total,
		LastPage:    int((total + int64(p.Limit) - 1) / int64(p.Limit)),
	}
	if total > 0 {
		meta.From = p.Offset() + 1
		meta.To = p.Offset() + p.Limit
		if int64(meta.To) > total {
			meta.To = int(total)
		}
	}
	meta.HasMore = p.Number < meta.LastPage
	return meta
}

type pagedResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Pagination PageMeta    `json:"pagination"`
}

func PagedResponse(c *fiber.Ctx, message string, data interface{}, meta PageMeta) error {
	return c.JSON(pagedResponse{Success: true, Message: message, Data: data, Pagination: meta})
}
