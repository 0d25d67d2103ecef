package service

import (
	"context"

	"github.com/itchan-dev/threads/shared/domain"
	"golang.org/x/sync/errgroup"
)

// populate resolves authors of nodes and, while depth > 0, their children level by level.
// Every level costs one batched thread query and one batched user query.
// Children of the deepest resolved level stay as ids.
func (s *Thread) populate(ctx context.Context, nodes []*domain.Thread, depth int) error {
	if len(nodes) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.resolveAuthors(ctx, nodes)
	})
	if depth > 0 {
		g.Go(func() error {
			children, err := s.resolveChildren(ctx, nodes)
			if err != nil {
				return err
			}
			return s.populate(ctx, children, depth-1)
		})
	}
	return g.Wait()
}

// populateList is the list view: authors on threads, bare records for their children
func (s *Thread) populateList(ctx context.Context, threads []*domain.Thread) error {
	if len(threads) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.resolveAuthors(ctx, threads)
	})
	g.Go(func() error {
		_, err := s.resolveChildren(ctx, threads)
		return err
	})
	return g.Wait()
}

func (s *Thread) resolveAuthors(ctx context.Context, nodes []*domain.Thread) error {
	seen := make(map[domain.UserId]struct{}, len(nodes))
	ids := make([]domain.UserId, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n.AuthorId]; !ok {
			seen[n.AuthorId] = struct{}{}
			ids = append(ids, n.AuthorId)
		}
	}

	summaries, err := s.storage.GetUserSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if summary, ok := summaries[n.AuthorId]; ok {
			n.Author = &summary
		}
	}
	return nil
}

// resolveChildren fills Children of every node in ChildIds order and returns all resolved children
func (s *Thread) resolveChildren(ctx context.Context, nodes []*domain.Thread) ([]*domain.Thread, error) {
	var ids []domain.ThreadId
	for _, n := range nodes {
		ids = append(ids, n.ChildIds...)
	}
	if len(ids) == 0 {
		for _, n := range nodes {
			n.Children = []*domain.Thread{}
		}
		return nil, nil
	}

	children, err := s.storage.GetThreadsByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[domain.ThreadId]*domain.Thread, len(children))
	for _, c := range children {
		byId[c.Id] = c
	}

	resolved := make([]*domain.Thread, 0, len(children))
	for _, n := range nodes {
		n.Children = make([]*domain.Thread, 0, len(n.ChildIds))
		for _, id := range n.ChildIds {
			if c, ok := byId[id]; ok {
				n.Children = append(n.Children, c)
				resolved = append(resolved, c)
			}
		}
	}
	return resolved, nil
}
