package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/itchan-dev/threads/shared/api"
	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/utils"
)

// GetThread returns internal_errors.ErrThreadNotFound when the API answers 404.
func (c *APIClient) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/threads/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, internal_errors.ErrThreadNotFound
	default:
		return nil, statusError(resp, "failed to fetch thread")
	}

	var thread api.ThreadResponse
	if err := utils.Decode(resp.Body, &thread); err != nil {
		return nil, fmt.Errorf("cannot decode thread response: %w", err)
	}
	return thread.Thread, nil
}

func (c *APIClient) GetThreads(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}

	resp, err := c.do(ctx, http.MethodGet, "/v1/threads?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "failed to fetch threads")
	}

	var list api.ThreadListResponse
	if err := utils.Decode(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("cannot decode threads response: %w", err)
	}
	return &list.ThreadsPage, nil
}
