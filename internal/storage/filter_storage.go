package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"style-filter-server/internal/config"
	"style-filter-server/internal/consts"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadResult 一次上传产出的对象 key 与三个派生地址
type UploadResult struct {
	ImgID       string
	ImgURL      string
	BlurImgURL  string
	SmallImgURL string
}

// FilterStorage 滤镜图片的外部存储（CDN）抽象
type FilterStorage interface {
	Upload(ctx context.Context, reader io.Reader, size int64, contentType string, ext string) (*UploadResult, error)
	Delete(ctx context.Context, imgIDs []string) error
}

// minioAPI 内部适配接口，便于在测试中替换真实 MinIO 客户端
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type MinioStorage struct {
	api       minioAPI
	bucket    string
	publicURL string
}

// InitFilterStorage 按配置建立对象存储客户端并确保桶存在
func InitFilterStorage(ctx context.Context) (*MinioStorage, error) {
	cfg := config.Get()

	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建对象存储客户端失败: %w", err)
	}

	s, err := NewMinioStorageWithAPI(ctx, client, cfg.Storage.Bucket, cfg.Storage.PublicURL)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ 对象存储已连接: %s (bucket=%s)", cfg.Storage.Endpoint, cfg.Storage.Bucket)
	return s, nil
}

// NewMinioStorageWithAPI 允许注入可替换的 API 实现（测试用）
func NewMinioStorageWithAPI(ctx context.Context, api minioAPI, bucket string, publicURL string) (*MinioStorage, error) {
	s := &MinioStorage{
		api:       api,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
	if err := s.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	return s, nil
}

func (s *MinioStorage) ensureBucketExists(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// Upload 上传单张滤镜图片，返回对象 key 与原图/模糊图/缩略图地址
func (s *MinioStorage) Upload(ctx context.Context, reader io.Reader, size int64, contentType string, ext string) (*UploadResult, error) {
	imgID := fmt.Sprintf("%s/%s%s", consts.StorageFolder, uuid.NewString(), ext)

	_, err := s.api.PutObject(ctx, s.bucket, imgID, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("上传对象失败: %w", err)
	}

	return &UploadResult{
		ImgID:       imgID,
		ImgURL:      s.ObjectURL(imgID),
		BlurImgURL:  s.BlurImageURL(imgID),
		SmallImgURL: s.SmallImageURL(imgID),
	}, nil
}

// Delete 批量删除对象；逐个删除，任一失败即返回错误
func (s *MinioStorage) Delete(ctx context.Context, imgIDs []string) error {
	for _, imgID := range imgIDs {
		if err := s.api.RemoveObject(ctx, s.bucket, imgID, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("删除对象 %s 失败: %w", imgID, err)
		}
	}
	return nil
}

// ObjectURL 对象的 CDN 原图地址
func (s *MinioStorage) ObjectURL(imgID string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, imgID)
}

// BlurImageURL 模糊图地址，由 CDN 按查询参数实时变换
func (s *MinioStorage) BlurImageURL(imgID string) string {
	return s.transformURL(imgID, url.Values{
		"blur":    {"1000"},
		"quality": {"auto"},
	})
}

// SmallImageURL 缩略图地址 (400x280 裁剪)
func (s *MinioStorage) SmallImageURL(imgID string) string {
	return s.transformURL(imgID, url.Values{
		"width":  {"400"},
		"height": {"280"},
		"fit":    {"crop"},
	})
}

func (s *MinioStorage) transformURL(imgID string, params url.Values) string {
	return s.ObjectURL(imgID) + "?" + params.Encode()
}
