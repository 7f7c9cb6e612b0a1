package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"lalan-be/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

/*
Konstanta batasan upload foto item.
*/
const (
	MaxImageSize = 5 * 1024 * 1024 // 5 MB, per foto item
)

/*
AllowedImageTypes adalah whitelist MIME type yang diperbolehkan untuk
foto item (§4.10's Image Store — hanya foto, tidak ada jenis dokumen
lain di domain peer-to-peer rental ini).
*/
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

/*
FileMetadata berisi informasi lengkap foto yang baru di-upload.
Digunakan sebagai return value UploadFile().
*/
type FileMetadata struct {
	FileName    string
	FileSize    int64
	ContentType string
	URL         string
	Path        string
	UploadedAt  time.Time
}

/*
Storage adalah kontrak (interface) untuk upload foto item ke object
storage. Handler item di internal/httpapi adalah satu-satunya
pemanggil — booking kernel tidak pernah menyentuh ini.
*/
type Storage interface {
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)
	UploadFile(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*FileMetadata, error)
}

/*
S3ImageStore adalah implementasi Storage di atas object storage
S3-compatible (mis. Supabase Storage, Cloudflare R2) lewat aws-sdk-go-v2
dengan UsePathStyle diarahkan ke endpoint kustom.
*/
type S3ImageStore struct {
	config config.StorageConfig
	client *s3.Client
}

/*
NewS3ImageStore membuat instance storage dengan konfigurasi eksplisit.
*/
func NewS3ImageStore(cfg config.StorageConfig) *S3ImageStore {
	return &S3ImageStore{config: cfg}
}

/*
NewImageStoreFromEnv membuat instance storage dari environment/config terpusat.
*/
func NewImageStoreFromEnv() *S3ImageStore {
	cfg := config.LoadStorageConfig()
	return NewS3ImageStore(cfg)
}

/*
getClient melakukan lazy initialization S3 client (hanya dibuat sekali).
*/
func (s *S3ImageStore) getClient() (*s3.Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	cfgAWS, err := awscfg.LoadDefaultConfig(context.TODO(),
		awscfg.WithRegion(s.config.Region),
		awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.AccessKey, s.config.SecretKey, "",
		)),
		awscfg.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{URL: s.config.Endpoint}, nil
		})),
	)
	if err != nil {
		log.Printf("S3ImageStore getClient: failed to load AWS config: %v", err)
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s.client = s3.NewFromConfig(cfgAWS, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return s.client, nil
}

/*
Upload mengunggah satu foto dari io.Reader ke path tertentu di bucket.

Alur kerja:
1. Lazy init client
2. Sanitasi path
3. PutObject ke bucket
4. Bangun public URL

Output sukses:
- string URL publik foto
Output error:
- error → gagal init client / upload / network
*/
func (s *S3ImageStore) Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	path = sanitizePath(path)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(path),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("S3ImageStore Upload: failed to upload %s: %v", path, err)
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	publicURL := s.buildPublicURL(path)
	log.Printf("S3ImageStore Upload: success %s → %s", path, publicURL)
	return publicURL, nil
}

/*
UploadFile mengunggah foto item multipart dengan validasi ukuran & tipe.

Alur kerja:
1. Validasi ukuran ≤ MaxImageSize
2. Validasi Content-Type terhadap AllowedImageTypes
3. Generate nama unik + ekstensi
4. Upload via Upload()
5. Return metadata lengkap

Output sukses:
- *FileMetadata
Output error:
- error → ukuran/tipe tidak valid / gagal buka file / gagal upload
*/
func (s *S3ImageStore) UploadFile(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*FileMetadata, error) {
	if fileHeader.Size > MaxImageSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size of %d bytes", MaxImageSize)
	}

	contentType := strings.ToLower(strings.TrimSpace(fileHeader.Header.Get("Content-Type")))
	if !AllowedImageTypes[contentType] {
		return nil, fmt.Errorf("invalid image type: %s. Allowed: jpg, jpeg, png, webp", contentType)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	uniqueName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	path := buildFilePath(folder, uniqueName)

	url, err := s.Upload(ctx, file, path, contentType)
	if err != nil {
		return nil, err
	}

	metadata := &FileMetadata{
		FileName:    fileHeader.Filename,
		FileSize:    fileHeader.Size,
		ContentType: contentType,
		URL:         url,
		Path:        path,
		UploadedAt:  time.Now(),
	}

	log.Printf("S3ImageStore UploadFile: uploaded %s → %s", fileHeader.Filename, url)
	return metadata, nil
}

/*
buildPublicURL membangun URL publik untuk foto yang sudah di-upload.
*/
func (s *S3ImageStore) buildPublicURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", s.config.Domain, s.config.Bucket, path)
}

// Helper functions

/*
sanitizePath membersihkan path dari karakter berbahaya dan leading/trailing slash.
*/
func sanitizePath(path string) string {
	path = strings.Trim(path, "/")
	path = strings.ReplaceAll(path, "../", "")
	path = strings.ReplaceAll(path, "..\\", "")
	return path
}

/*
buildFilePath menggabungkan folder dan nama file dengan benar.
*/
func buildFilePath(folder, fileName string) string {
	if folder == "" {
		return fileName
	}
	return fmt.Sprintf("%s/%s", strings.Trim(folder, "/"), fileName)
}
