package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/itchan-dev/threads/shared/api"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockThreadService mocks service.ThreadService.
type MockThreadService struct {
	CreateFunc     func(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error)
	ListFunc       func(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error)
	GetByIdFunc    func(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	AddCommentFunc func(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error)
}

func (m *MockThreadService) Create(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, data)
	}
	return &domain.Thread{Id: uuid.New()}, nil
}

func (m *MockThreadService) List(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, pageSize)
	}
	return &domain.ThreadsPage{Threads: []*domain.Thread{}}, nil
}

func (m *MockThreadService) GetById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if m.GetByIdFunc != nil {
		return m.GetByIdFunc(ctx, id)
	}
	return &domain.Thread{Id: id}, nil
}

func (m *MockThreadService) AddComment(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error) {
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, data)
	}
	return &domain.Thread{Id: uuid.New(), ParentId: &data.ThreadId}, nil
}

func setupTestHandler(svc *MockThreadService) (*Handler, *chi.Mux) {
	h := &Handler{
		thread: svc,
		health: &MockHealthChecker{},
		cfg:    &config.Config{Public: config.Public{DefaultPageSize: 20, MaxPageSize: 50}},
	}
	r := chi.NewRouter()
	r.Post("/v1/threads", h.CreateThread)
	r.Get("/v1/threads", h.GetThreads)
	r.Get("/v1/threads/{thread}", h.GetThread)
	r.Post("/v1/threads/{thread}/comments", h.AddComment)
	return h, r
}

func serve(r http.Handler, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateThreadHandler(t *testing.T) {
	author := uuid.New()

	t.Run("Success", func(t *testing.T) {
		var got domain.ThreadCreationData
		created := &domain.Thread{Id: uuid.New(), Text: "hello", AuthorId: author}
		_, r := setupTestHandler(&MockThreadService{CreateFunc: func(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error) {
			got = data
			return created, nil
		}})

		body := []byte(fmt.Sprintf(`{"text":"hello","author":"%s","path":"/"}`, author))
		rr := serve(r, http.MethodPost, "/v1/threads", body)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, domain.ThreadCreationData{Text: "hello", Author: author, Path: "/"}, got)

		var resp api.ThreadResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, created.Id, resp.Id)
		assert.Nil(t, resp.Community)
	})

	t.Run("Missing fields", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{})
		rr := serve(r, http.MethodPost, "/v1/threads", []byte(`{"text":"hello"}`))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Invalid json", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{})
		rr := serve(r, http.MethodPost, "/v1/threads", []byte(`{"text":`))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Body is invalid json\n", rr.Body.String())
	})

	t.Run("Unknown author", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{CreateFunc: func(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error) {
			return nil, fmt.Errorf("failed to create thread: %w", internal_errors.ErrUserNotFound)
		}})
		rr := serve(r, http.MethodPost, "/v1/threads", []byte(fmt.Sprintf(`{"text":"x","author":"%s"}`, author)))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestGetThreadsHandler(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		var gotPage, gotSize int
		_, r := setupTestHandler(&MockThreadService{ListFunc: func(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error) {
			gotPage, gotSize = page, pageSize
			return &domain.ThreadsPage{Threads: []*domain.Thread{{Id: uuid.New()}}, IsNextPage: true}, nil
		}})

		rr := serve(r, http.MethodGet, "/v1/threads", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, gotPage)
		assert.Equal(t, 20, gotSize)

		var resp api.ThreadListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp.Threads, 1)
		assert.True(t, resp.IsNextPage)
	})

	t.Run("Explicit page", func(t *testing.T) {
		var gotPage, gotSize int
		_, r := setupTestHandler(&MockThreadService{ListFunc: func(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error) {
			gotPage, gotSize = page, pageSize
			return &domain.ThreadsPage{Threads: []*domain.Thread{}}, nil
		}})

		rr := serve(r, http.MethodGet, "/v1/threads?page=3&page_size=5", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 3, gotPage)
		assert.Equal(t, 5, gotSize)
		assert.JSONEq(t, `{"threads":[],"is_next_page":false}`, rr.Body.String())
	})

	t.Run("Invalid page", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{})
		for _, q := range []string{"page=abc", "page=0", "page_size=-1"} {
			rr := serve(r, http.MethodGet, "/v1/threads?"+q, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		}
	})

	t.Run("Service error", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{ListFunc: func(ctx context.Context, page, pageSize int) (*domain.ThreadsPage, error) {
			return nil, fmt.Errorf("failed to fetch threads: %w", context.DeadlineExceeded)
		}})
		rr := serve(r, http.MethodGet, "/v1/threads", nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestGetThreadHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		child := &domain.Thread{Id: uuid.New(), ParentId: &id, Author: &domain.UserSummary{Name: "bob"}}
		_, r := setupTestHandler(&MockThreadService{GetByIdFunc: func(ctx context.Context, got domain.ThreadId) (*domain.Thread, error) {
			return &domain.Thread{Id: got, ChildIds: []domain.ThreadId{child.Id}, Children: []*domain.Thread{child}}, nil
		}})

		rr := serve(r, http.MethodGet, "/v1/threads/"+id.String(), nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp api.ThreadResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, id, resp.Id)
		require.Len(t, resp.Children, 1)
		assert.Equal(t, "bob", resp.Children[0].Author.Name)
	})

	t.Run("Invalid id", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{})
		rr := serve(r, http.MethodGet, "/v1/threads/42", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Not found", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{GetByIdFunc: func(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
			return nil, fmt.Errorf("failed to fetch thread: %w", internal_errors.ErrThreadNotFound)
		}})
		rr := serve(r, http.MethodGet, "/v1/threads/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAddCommentHandler(t *testing.T) {
	author := uuid.New()
	parent := uuid.New()
	body := []byte(fmt.Sprintf(`{"text":"reply","author":"%s","path":"/thread/%s"}`, author, parent))

	t.Run("Success", func(t *testing.T) {
		var got domain.CommentCreationData
		_, r := setupTestHandler(&MockThreadService{AddCommentFunc: func(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error) {
			got = data
			return &domain.Thread{Id: uuid.New(), ParentId: &data.ThreadId}, nil
		}})

		rr := serve(r, http.MethodPost, "/v1/threads/"+parent.String()+"/comments", body)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, parent, got.ThreadId)
		assert.Equal(t, author, got.Author)
		assert.Equal(t, "/thread/"+parent.String(), got.Path)

		var resp api.ThreadResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.ParentId)
		assert.Equal(t, parent, *resp.ParentId)
	})

	t.Run("Thread not found", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{AddCommentFunc: func(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error) {
			return nil, fmt.Errorf("unable to add comment: %w", internal_errors.ErrThreadNotFound)
		}})
		rr := serve(r, http.MethodPost, "/v1/threads/"+parent.String()+"/comments", body)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Thread not found")
	})

	t.Run("Generic failure", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{AddCommentFunc: func(ctx context.Context, data domain.CommentCreationData) (*domain.Thread, error) {
			return nil, fmt.Errorf("unable to add comment: %w", context.Canceled)
		}})
		rr := serve(r, http.MethodPost, "/v1/threads/"+parent.String()+"/comments", body)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("Invalid thread id", func(t *testing.T) {
		_, r := setupTestHandler(&MockThreadService{})
		rr := serve(r, http.MethodPost, "/v1/threads/nope/comments", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
