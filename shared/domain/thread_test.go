package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestThreadClone(t *testing.T) {
	parent := uuid.New()
	child := uuid.New()
	community := uuid.New()
	original := &Thread{
		Id:        uuid.New(),
		Text:      "hello",
		AuthorId:  uuid.New(),
		Author:    &UserSummary{Name: "alice"},
		ParentId:  &parent,
		Community: &community,
		CreatedAt: time.Now(),
		ChildIds:  []ThreadId{child},
		Children:  []*Thread{{Id: child}},
	}

	c := original.Clone()

	assert.Equal(t, original.Id, c.Id)
	assert.Equal(t, original.ChildIds, c.ChildIds)
	assert.Nil(t, c.Author)
	assert.Nil(t, c.Children)

	c.ChildIds[0] = uuid.New()
	*c.ParentId = uuid.New()
	assert.Equal(t, child, original.ChildIds[0], "clone must not share the children slice")
	assert.Equal(t, parent, *original.ParentId, "clone must not share the parent pointer")

	*c.Community = uuid.New()
	assert.Equal(t, community, *original.Community, "clone must not share the community pointer")
}

func TestThreadString(t *testing.T) {
	root := &Thread{Id: uuid.New(), Text: "root", Author: &UserSummary{Name: "alice"}}
	root.Children = []*Thread{{Id: uuid.New(), Text: "reply", Author: &UserSummary{Name: "bob"}}}
	root.ChildIds = []ThreadId{root.Children[0].Id}

	s := root.String()
	assert.Contains(t, s, `author:alice`)
	assert.Contains(t, s, "  [id:"+root.Children[0].Id.String())
	assert.True(t, root.IsTopLevel())
}
