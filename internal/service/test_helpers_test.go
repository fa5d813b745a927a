package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"style-filter-server/internal/common"
	"style-filter-server/internal/config"
	"style-filter-server/internal/model"
	"style-filter-server/internal/repository"
	"style-filter-server/internal/storage"
	"style-filter-server/internal/testutils"
)

// fakeFilterStorage 内存版对象存储，记录上传与删除调用
type fakeFilterStorage struct {
	uploadSeq   int64
	uploaded    []string
	deleted     []string
	failAfter   int64 // 上传到第 N 个后开始失败；0 表示不失败
	deleteCalls int
}

func (f *fakeFilterStorage) Upload(ctx context.Context, reader io.Reader, size int64, contentType string, ext string) (*storage.UploadResult, error) {
	seq := atomic.AddInt64(&f.uploadSeq, 1)
	if f.failAfter > 0 && seq > f.failAfter {
		return nil, errors.New("storage unavailable")
	}
	imgID := fmt.Sprintf("style-filters/fake-%d%s", seq, ext)
	f.uploaded = append(f.uploaded, imgID)
	return &storage.UploadResult{
		ImgID:       imgID,
		ImgURL:      "https://cdn.example.com/filters/" + imgID,
		BlurImgURL:  "https://cdn.example.com/filters/" + imgID + "?blur=1000",
		SmallImgURL: "https://cdn.example.com/filters/" + imgID + "?width=400&height=280",
	}, nil
}

func (f *fakeFilterStorage) Delete(ctx context.Context, imgIDs []string) error {
	f.deleteCalls++
	f.deleted = append(f.deleted, imgIDs...)
	return nil
}

type testEnv struct {
	authService   *AuthService
	filterService *FilterService
	filterStorage *fakeFilterStorage
	userStore     repository.UserStore
	filterStore   repository.StyleFilterStore
	linkStore     repository.MagicLinkStore
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	config.InitConfig("")

	gdb := testutils.SetupDB(t)
	userStore := repository.NewUserRepository(gdb)
	linkStore := repository.NewMagicLinkRepository(gdb)
	filterStore := repository.NewStyleFilterRepository(gdb)
	filterStorage := &fakeFilterStorage{}

	return &testEnv{
		authService:   NewAuthService(userStore, linkStore),
		filterService: NewFilterService(filterStore, userStore, filterStorage),
		filterStorage: filterStorage,
		userStore:     userStore,
		filterStore:   filterStore,
		linkStore:     linkStore,
	}
}

func mustSignup(t *testing.T, env *testEnv, username, email string) (*model.User, string) {
	t.Helper()
	user, token, err := env.authService.Signup(username, email)
	if err != nil {
		t.Fatalf("signup %s: %v", username, err)
	}
	return user, token
}

func assertServiceErrorCode(t *testing.T, err error, code common.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("期望错误码 %s，实际无错误", code)
	}
	serviceErr, ok := common.AsServiceError(err)
	if !ok {
		t.Fatalf("期望 ServiceError，实际为 %T: %v", err, err)
	}
	if serviceErr.Code != code {
		t.Fatalf("期望错误码 %s，实际为 %s (%s)", code, serviceErr.Code, serviceErr.Message)
	}
}
