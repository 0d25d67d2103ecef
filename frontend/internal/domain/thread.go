package frontend_domain

import (
	"html/template"
	"time"

	"github.com/itchan-dev/threads/shared/domain"
)

// ThreadCard is the view model of one post and the replies rendered under it.
type ThreadCard struct {
	Id            string
	CurrentUserId string
	ParentId      string // empty for top-level threads
	Content       template.HTML
	Author        *domain.UserSummary
	Community     string
	CreatedAt     time.Time
	Comments      []*ThreadCard
	// replies that exist but were not loaded at this depth
	HiddenReplies int
}

func (c *ThreadCard) IsOwn() bool {
	return c.CurrentUserId != "" && c.Author != nil && c.Author.Id.String() == c.CurrentUserId
}

// LastActivity is the newest CreatedAt in the card tree.
func (c *ThreadCard) LastActivity() time.Time {
	latest := c.CreatedAt
	for _, comment := range c.Comments {
		if t := comment.LastActivity(); t.After(latest) {
			latest = t
		}
	}
	return latest
}

type ThreadPage struct {
	Card *ThreadCard
}

type IndexPage struct {
	Threads    []*ThreadCard
	Page       int
	IsNextPage bool
}

func (p IndexPage) NextPage() int { return p.Page + 1 }
func (p IndexPage) PrevPage() int { return p.Page - 1 }
