package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/code-translator/internal/apperror"
	"github.com/sakif/code-translator/internal/executor"
	"github.com/sakif/code-translator/internal/model"
	"github.com/sakif/code-translator/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGenerator records prompts and replays a canned answer.
type fakeGenerator struct {
	text    string
	err     error
	prompts []string
	// block makes Generate wait for ctx to end.
	block bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

// fakeExecutor returns a fixed result.
type fakeExecutor struct {
	result *executor.ExecutionResult
	err    error
	got    []string
}

func (f *fakeExecutor) Execute(_ context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	f.got = append(f.got, req.Code)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeExecutionRepo keeps records in memory, newest last.
type fakeExecutionRepo struct {
	mu        sync.Mutex
	records   []model.ExecutionRecord
	recordErr error
	lastOpts  repository.ListOptions
}

func (f *fakeExecutionRepo) RecordExecution(_ context.Context, rec *model.ExecutionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	rec.ID = fmt.Sprintf("exec-%d", len(f.records)+1)
	rec.CreatedAt = time.Now()
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeExecutionRepo) ListExecutions(_ context.Context, userID string, opts repository.ListOptions) ([]model.ExecutionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = opts
	var out []model.ExecutionRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users     map[string]*model.User
	byGHID    map[int64]*model.User
	byLogin   map[string]*model.User
	nextID    int
	upsertErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]*model.User),
		byGHID:  make(map[int64]*model.User),
		byLogin: make(map[string]*model.User),
		nextID:  1,
	}
}

func (f *fakeUserRepo) newID() string {
	id := fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	return id
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.byGHID[user.GitHubID]; ok {
		existing.Login = user.Login
		existing.Email = user.Email
		existing.AvatarURL = user.AvatarURL
		*user = *existing
		return nil
	}
	user.ID = f.newID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	f.byGHID[user.GitHubID] = &stored
	return nil
}

func (f *fakeUserRepo) CreateLocal(_ context.Context, user *model.User) error {
	if _, taken := f.byLogin[user.Login]; taken {
		return apperror.Conflict("login is already taken")
	}
	user.ID = f.newID()
	stored := *user
	f.users[user.ID] = &stored
	f.byLogin[user.Login] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) GetLocalUserByLogin(_ context.Context, login string) (*model.User, error) {
	u, ok := f.byLogin[login]
	if !ok {
		return nil, apperror.NotFound("user", login)
	}
	return u, nil
}
