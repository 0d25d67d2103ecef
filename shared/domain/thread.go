package domain

import (
	"fmt"
	"strings"
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Text        ThreadText
	Author      UserId
	CommunityId *CommunityId // accepted from callers, never stored
	Path        Path
}

type CommentCreationData struct {
	ThreadId ThreadId // parent
	Text     ThreadText
	Author   UserId
	Path     Path
}

type Thread struct {
	Id        ThreadId     `json:"id"`
	Text      ThreadText   `json:"text"`
	AuthorId  UserId       `json:"author_id"`
	Author    *UserSummary `json:"author,omitempty"` // nil until resolved
	Community *CommunityId `json:"community"`
	ParentId  *ThreadId    `json:"parent_id"`
	CreatedAt time.Time    `json:"created_at"`
	ChildIds  []ThreadId   `json:"child_ids"`          // reply references, append order
	Children  []*Thread    `json:"children,omitempty"` // nil until resolved
}

func (t *Thread) IsTopLevel() bool {
	return t.ParentId == nil
}

// Clone copies the record fields. Resolved relations are not carried over.
func (t *Thread) Clone() *Thread {
	c := *t
	c.Author = nil
	c.Children = nil
	c.ChildIds = append([]ThreadId{}, t.ChildIds...)
	if t.ParentId != nil {
		parent := *t.ParentId
		c.ParentId = &parent
	}
	if t.Community != nil {
		community := *t.Community
		c.Community = &community
	}
	return &c
}

type ThreadsPage struct {
	Threads    []*Thread `json:"threads"`
	IsNextPage bool      `json:"is_next_page"`
}

// for debug
func (t *Thread) String() string {
	var b strings.Builder
	t.writeTree(&b, 0)
	return b.String()
}

func (t *Thread) writeTree(b *strings.Builder, depth int) {
	author := t.AuthorId.String()
	if t.Author != nil {
		author = t.Author.Name
	}
	fmt.Fprintf(b, "%s[id:%s, author:%s, created:%s, text:%q, replies:%d]\n",
		strings.Repeat("  ", depth), t.Id, author, t.CreatedAt.Format(time.StampMilli), t.Text, len(t.ChildIds))
	for _, child := range t.Children {
		child.writeTree(b, depth+1)
	}
}
