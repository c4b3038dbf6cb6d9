package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/irmock-api/internal/auth"
	"github.com/phrazzld/irmock-api/internal/config"
	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/events"
	"github.com/phrazzld/irmock-api/internal/platform/fixture"
	"github.com/phrazzld/irmock-api/internal/platform/snapshot"
	"github.com/phrazzld/irmock-api/internal/service"
	"github.com/phrazzld/irmock-api/internal/task"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey = "test-api-key"
	taskOne    = "3f1c2b8e-9d4a-4e6b-8c2f-1a5d7e9b0c13"
)

// testEnv is a fully wired API over the in-process completion pipeline.
type testEnv struct {
	server  *httptest.Server
	handler http.Handler
	store   *snapshot.Store
	emitter *events.InMemoryEventEmitter
}

func fiveTasks() []domain.Task {
	tasks := []domain.Task{{UUID: taskOne, Name: "Shelf audit"}}
	for i := 2; i <= 5; i++ {
		tasks = append(tasks, domain.Task{UUID: fmt.Sprintf("task-%d", i), Name: fmt.Sprintf("Task %d", i)})
	}
	return tasks
}

func newTestEnv(t *testing.T, delay time.Duration) *testEnv {
	t.Helper()

	registry, err := fixture.NewTaskRegistry(fiveTasks())
	require.NoError(t, err)
	catalog := fixture.NewCatalog([]domain.CatalogItem{
		{"id": "item1", "name": "Cola 330ml"},
		{"id": "item2", "name": "Water 500ml"},
	})

	st, err := snapshot.Open(filepath.Join(t.TempDir(), "image-submissions.json"), nil)
	require.NoError(t, err)

	emitter := events.NewInMemoryEventEmitter(nil)

	queue := task.NewTaskQueue(64, nil)
	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{WorkerCount: 2}, nil)
	pool.Start()
	scheduler := task.NewScheduler(queue, nil, nil)

	factory, err := task.NewCompletionTaskFactory(st, task.NewSyntheticGenerator(2), emitter, nil, nil)
	require.NoError(t, err)
	completions := task.NewCompletionScheduler(scheduler, factory,
		task.CompletionConfig{Delay: delay, Stagger: delay / 10}, nil)

	taskSvc, err := service.NewTaskService(registry, 2, 3, nil)
	require.NoError(t, err)
	catalogSvc, err := service.NewCatalogService(catalog)
	require.NoError(t, err)
	submissionSvc, err := service.NewSubmissionService(registry, st, completions, nil, nil)
	require.NoError(t, err)

	authenticator, err := auth.NewAuthenticator(config.AuthConfig{APIKey: testAPIKey})
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Tasks:         NewTaskHandler(taskSvc, nil),
		Catalog:       NewCatalogHandler(catalogSvc),
		Submissions:   NewSubmissionHandler(submissionSvc, 1<<20, nil),
		Authenticator: authenticator,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		}),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		scheduler.Stop()
		queue.Close()
		pool.Stop()
	})

	return &testEnv{server: srv, handler: router, store: st, emitter: emitter}
}

// do sends a request with the test API key unless withKey is false.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string, withKey bool) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, e.server.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if withKey {
		req.Header.Set(auth.APIKeyHeader, testAPIKey)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// multipartBody builds a multipart body with the given number of file parts
// spread over two field names, plus optional plain fields.
func multipartBody(t *testing.T, files int, fields map[string]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i < files; i++ {
		field := "images"
		if i%2 == 1 {
			field = "files"
		}
		part, err := mw.CreateFormFile(field, fmt.Sprintf("shelf-%d.jpg", i))
		require.NoError(t, err)
		_, err = part.Write([]byte("\xff\xd8\xff fake jpeg bytes"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
